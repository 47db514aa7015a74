package domain

import "errors"

var (
	ErrEmptyMessage        = errors.New("message content is empty")
	ErrMessageTooLong      = errors.New("message content too long")
	ErrCounterpartNotFound = errors.New("counterpart not found")
)
