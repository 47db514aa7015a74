package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	identity "github.com/tvnrapp/relationship-os/internal/identity/domain"
)

// CreateRequest issues a new invite.
type CreateRequest struct {
	Email       string `json:"email" binding:"required"`
	Role        string `json:"role" binding:"required"`
	CompanyName string `json:"companyName"`
}

// CreateResult carries the raw token, returned exactly once.
type CreateResult struct {
	Invite    *Invite
	RawToken  string
	AcceptURL string
}

// InviteInfo is the public view of a pending invite.
type InviteInfo struct {
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	CompanyName string    `json:"companyName,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AcceptRequest consumes an invite and provisions or updates the account.
type AcceptRequest struct {
	Token       string `json:"token" binding:"required"`
	Name        string `json:"name"`
	ExternalSub string `json:"externalSub"`
}

// AcceptResult carries the session token for the provisioned account.
type AcceptResult struct {
	Token string
	User  *identity.User
}

// Service implements the single-use invite lifecycle.
type Service interface {
	Create(ctx context.Context, issuer snowflake.ID, req CreateRequest) (*CreateResult, error)
	Validate(ctx context.Context, rawToken string) (*InviteInfo, error)
	Accept(ctx context.Context, req AcceptRequest) (*AcceptResult, error)
	ListPending(ctx context.Context, issuer snowflake.ID) ([]Invite, error)
}
