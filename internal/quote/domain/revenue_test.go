package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cycle(c string) *string { return &c }

func TestMonthlyValueNormalization(t *testing.T) {
	tests := []struct {
		name string
		line QuoteLine
		want float64
	}{
		{
			name: "monthly keeps base",
			line: QuoteLine{Type: "SERVICE", UnitPrice: 120, Quantity: 1, BillingCycle: cycle(CycleMonthly)},
			want: 120,
		},
		{
			name: "quarterly divides by three",
			line: QuoteLine{Type: "SERVICE", UnitPrice: 120, Quantity: 1, BillingCycle: cycle(CycleQuarterly)},
			want: 40,
		},
		{
			name: "yearly divides by twelve",
			line: QuoteLine{Type: "SERVICE", UnitPrice: 120, Quantity: 1, BillingCycle: cycle(CycleYearly)},
			want: 10,
		},
		{
			name: "discount contributes nothing even with a cycle",
			line: QuoteLine{Type: LineTypeDiscount, UnitPrice: 50, Quantity: 1, BillingCycle: cycle(CycleMonthly)},
			want: 0,
		},
		{
			name: "missing cycle contributes nothing",
			line: QuoteLine{Type: "SERVICE", UnitPrice: 99, Quantity: 2},
			want: 0,
		},
		{
			name: "unknown cycle contributes nothing",
			line: QuoteLine{Type: "SERVICE", UnitPrice: 99, Quantity: 1, BillingCycle: cycle("WEEKLY")},
			want: 0,
		},
		{
			name: "quantity multiplies the base",
			line: QuoteLine{Type: "SEAT", UnitPrice: 10, Quantity: 6, BillingCycle: cycle(CycleYearly)},
			want: 5,
		},
		{
			name: "zero quantity counts as one",
			line: QuoteLine{Type: "SEAT", UnitPrice: 36, Quantity: 0, BillingCycle: cycle(CycleYearly)},
			want: 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, MonthlyValue(tc.line), 1e-9)
		})
	}
}

func TestLineTotalClampsQuantity(t *testing.T) {
	assert.InDelta(t, 100.0, LineTotal(QuoteLine{UnitPrice: 50, Quantity: 2}), 1e-9)
	assert.InDelta(t, 50.0, LineTotal(QuoteLine{UnitPrice: 50, Quantity: 0}), 1e-9)
	assert.InDelta(t, 50.0, LineTotal(QuoteLine{UnitPrice: 50, Quantity: -3}), 1e-9)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(99.99/3))
	assert.Equal(t, 10.0, Round2(10.0000001))
	assert.Equal(t, 0.0, Round2(0))
}

func TestEntitledLineTypes(t *testing.T) {
	assert.True(t, QuoteLine{Type: "SUBSCRIPTION"}.Entitled())
	assert.True(t, QuoteLine{Type: "SEAT"}.Entitled())
	assert.False(t, QuoteLine{Type: LineTypeDiscount}.Entitled())
	assert.False(t, QuoteLine{Type: LineTypeOneTimePart}.Entitled())
}

func TestParseTerminalStatus(t *testing.T) {
	status, ok := ParseTerminalStatus("APPROVED")
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, status)

	status, ok = ParseTerminalStatus("REJECTED")
	assert.True(t, ok)
	assert.Equal(t, StatusRejected, status)

	_, ok = ParseTerminalStatus("SENT")
	assert.False(t, ok)
	_, ok = ParseTerminalStatus("")
	assert.False(t, ok)
}
