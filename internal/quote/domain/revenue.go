package domain

import "math"

// MonthlyValue normalizes a quote line to its monthly revenue contribution.
// Discounts contribute nothing; one-time and unset cycles contribute nothing.
func MonthlyValue(line QuoteLine) float64 {
	if line.Type == LineTypeDiscount {
		return 0
	}
	quantity := line.Quantity
	if quantity < 1 {
		quantity = 1
	}
	base := line.UnitPrice * float64(quantity)
	if line.BillingCycle == nil {
		return 0
	}
	switch *line.BillingCycle {
	case CycleMonthly:
		return base
	case CycleQuarterly:
		return base / 3
	case CycleYearly:
		return base / 12
	default:
		return 0
	}
}

// LineTotal is the line's contribution to the quote total.
func LineTotal(line QuoteLine) float64 {
	quantity := line.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return line.UnitPrice * float64(quantity)
}

// Round2 rounds to two decimal places for display aggregates.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
