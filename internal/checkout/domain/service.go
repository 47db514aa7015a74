package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// ErrQuoteNotPayable rejects checkout for rejected quotes.
var ErrQuoteNotPayable = errors.New("quote is not payable")

// Result carries the hosted payment page for the client to redirect to.
type Result struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// Service turns an owned quote into a hosted checkout session.
type Service interface {
	CreateCheckout(ctx context.Context, customer snowflake.ID, quoteID snowflake.ID) (*Result, error)
}
