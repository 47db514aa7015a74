package domain

import "errors"

var (
	// ErrSubscriptionNotFound covers both absent and not-owned subscriptions
	// so callers cannot probe for existence.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidState         = errors.New("invalid subscription state")
)
