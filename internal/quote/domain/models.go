// Package domain contains core types for the quote lifecycle.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the closed set of quote states. Transitions run one way from SENT.
type Status string

const (
	StatusSent     Status = "SENT"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseTerminalStatus validates a customer-submitted transition target.
func ParseTerminalStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusApproved:
		return StatusApproved, true
	case StatusRejected:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Line types with special handling. The set is otherwise open-ended.
const (
	LineTypeDiscount    = "DISCOUNT"
	LineTypeOneTimePart = "ONE_TIME_PART"
)

// Billing cycles used for monthly revenue normalization.
const (
	CycleMonthly   = "MONTHLY"
	CycleQuarterly = "QUARTERLY"
	CycleYearly    = "YEARLY"
)

// Quote is a priced offer from a seller to a customer.
type Quote struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	QuoteNumber string       `gorm:"column:quote_number;type:text;not null;uniqueIndex"`
	CustomerID  snowflake.ID `gorm:"column:customer_id;not null;index"`
	SellerID    snowflake.ID `gorm:"column:seller_id;not null;index"`
	TotalAmount float64      `gorm:"column:total_amount;not null"`
	Currency    string       `gorm:"column:currency;type:text;not null;default:USD"`
	Status      Status       `gorm:"column:status;type:text;not null;index"`
	Notes       *string      `gorm:"column:notes;type:text"`

	Lines []QuoteLine `gorm:"foreignKey:QuoteID"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Quote) TableName() string { return "quotes" }

// QuoteLine is immutable once its parent quote is created.
type QuoteLine struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	QuoteID      snowflake.ID      `gorm:"column:quote_id;not null;index"`
	Type         string            `gorm:"column:type;type:text;not null"`
	Name         string            `gorm:"column:name;type:text;not null"`
	UnitPrice    float64           `gorm:"column:unit_price;not null"`
	Quantity     int               `gorm:"column:quantity;not null;default:1"`
	BillingCycle *string           `gorm:"column:billing_cycle;type:text"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (QuoteLine) TableName() string { return "quote_lines" }

// Entitled reports whether the line becomes an entitlement on approval.
func (l QuoteLine) Entitled() bool {
	return l.Type != LineTypeDiscount && l.Type != LineTypeOneTimePart
}
