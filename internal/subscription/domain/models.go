// Package domain contains core types for the subscription lifecycle.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status is the closed set of subscription states.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPaused    Status = "PAUSED"
	StatusCancelled Status = "CANCELLED"
)

// Subscription is created only as the side effect of an approved quote.
type Subscription struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	CustomerID  snowflake.ID `gorm:"column:customer_id;not null;index"`
	QuoteID     snowflake.ID `gorm:"column:quote_id;not null;uniqueIndex"`
	Name        string       `gorm:"column:name;type:text;not null"`
	Status      Status       `gorm:"column:status;type:text;not null;index"`
	AutoRenew   bool         `gorm:"column:auto_renew;not null"`
	StartDate   time.Time    `gorm:"column:start_date;not null"`
	RenewalDate time.Time    `gorm:"column:renewal_date;not null"`
	EndDate     *time.Time   `gorm:"column:end_date"`

	Entitlements []Entitlement `gorm:"foreignKey:SubscriptionID"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// Entitlement is copied from an eligible quote line at approval time and is
// immutable afterwards.
type Entitlement struct {
	ID             snowflake.ID      `gorm:"primaryKey"`
	SubscriptionID snowflake.ID      `gorm:"column:subscription_id;not null;index"`
	Type           string            `gorm:"column:type;type:text;not null"`
	Name           string            `gorm:"column:name;type:text;not null"`
	Capacity       int               `gorm:"column:capacity;not null"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Entitlement) TableName() string { return "entitlements" }
