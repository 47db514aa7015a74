package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	identity "github.com/tvnrapp/relationship-os/internal/identity/domain"
)

// Result is a block of generated prose. Degraded marks placeholder text
// produced when the completion provider was unavailable.
type Result struct {
	Text     string `json:"text"`
	Degraded bool   `json:"degraded"`
}

// Service generates prose over data the caller owns.
type Service interface {
	QuoteSummary(ctx context.Context, caller *identity.User, quoteID snowflake.ID) (*Result, error)
	SubscriptionInsights(ctx context.Context, caller *identity.User) (*Result, error)
}
