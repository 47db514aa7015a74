package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// EntitlementInput is one eligible quote line flattened for provisioning.
type EntitlementInput struct {
	Type     string
	Name     string
	Capacity int
	Metadata map[string]any
}

// ProvisionInput describes the subscription spawned by an approved quote.
type ProvisionInput struct {
	QuoteID      snowflake.ID
	CustomerID   snowflake.ID
	Name         string
	Entitlements []EntitlementInput
}

// Service implements subscription self-service and approval provisioning.
type Service interface {
	ListByCustomer(ctx context.Context, customer snowflake.ID) ([]Subscription, error)
	ListBySeller(ctx context.Context, seller snowflake.ID) ([]Subscription, error)
	Cancel(ctx context.Context, customer, id snowflake.ID) (*Subscription, error)
	Pause(ctx context.Context, customer, id snowflake.ID) (*Subscription, error)
	Resume(ctx context.Context, customer, id snowflake.ID) (*Subscription, error)
	// ProvisionFromQuote runs inside the caller's transaction so the quote
	// status change and the subscription creation commit or roll back together.
	ProvisionFromQuote(ctx context.Context, tx *gorm.DB, input ProvisionInput) (*Subscription, error)
}
