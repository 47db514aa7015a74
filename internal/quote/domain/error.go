package domain

import "errors"

var (
	ErrQuoteNotFound   = errors.New("quote not found")
	ErrQuoteResolved   = errors.New("quote already resolved")
	ErrNoLines         = errors.New("quote requires at least one line")
	ErrInvalidStatus   = errors.New("invalid quote status")
	ErrInvalidCustomer = errors.New("invalid customer")
)
