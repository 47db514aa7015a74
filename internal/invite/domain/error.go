package domain

import "errors"

var (
	ErrInviteNotFound    = errors.New("invite not found")
	ErrInviteAlreadyUsed = errors.New("invite already used")
	ErrInviteExpired     = errors.New("invite expired")
)
