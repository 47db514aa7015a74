package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	identity "github.com/tvnrapp/relationship-os/internal/identity/domain"
	subscription "github.com/tvnrapp/relationship-os/internal/subscription/domain"
)

// LineInput is one line of a new quote.
type LineInput struct {
	Type         string         `json:"type" binding:"required"`
	Name         string         `json:"name" binding:"required"`
	UnitPrice    float64        `json:"unitPrice"`
	Quantity     int            `json:"quantity"`
	BillingCycle string         `json:"billingCycle"`
	Metadata     map[string]any `json:"metadata"`
}

// CreateRequest creates a quote with embedded lines.
type CreateRequest struct {
	CustomerID string      `json:"customerId" binding:"required"`
	Currency   string      `json:"currency"`
	Notes      string      `json:"notes"`
	Lines      []LineInput `json:"lines" binding:"required"`
}

// SetStatusRequest is the customer's approve/reject action.
type SetStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// SetStatusResult carries the spawned subscription when the quote was approved.
type SetStatusResult struct {
	Quote        *Quote
	Subscription *subscription.Subscription
}

// Service implements the quote lifecycle.
type Service interface {
	Create(ctx context.Context, seller snowflake.ID, req CreateRequest) (*Quote, error)
	ListByCustomer(ctx context.Context, customer snowflake.ID) ([]Quote, error)
	ListBySeller(ctx context.Context, seller snowflake.ID) ([]Quote, error)
	// GetOwned returns the quote only when the caller sits on either side of
	// it (or is an admin).
	GetOwned(ctx context.Context, caller snowflake.ID, role identity.Role, id snowflake.ID) (*Quote, error)
	SetStatus(ctx context.Context, customer, id snowflake.ID, req SetStatusRequest) (*SetStatusResult, error)
}
