package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists subscriptions and entitlements. Methods accept a db
// handle so callers can run inside an existing transaction.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, sub *Subscription) error
	CreateEntitlements(ctx context.Context, db *gorm.DB, ents []Entitlement) error
	FindOwned(ctx context.Context, db *gorm.DB, customer, id snowflake.ID) (*Subscription, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) ([]Subscription, error)
	ListBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) ([]Subscription, error)
	// UpdateStateOwned applies fields only when the subscription belongs to
	// the customer and currently sits in one of the given states. Reports the
	// number of affected rows so callers can distinguish a lost race.
	UpdateStateOwned(ctx context.Context, db *gorm.DB, customer, id snowflake.ID, from []Status, fields map[string]any) (int64, error)
}
