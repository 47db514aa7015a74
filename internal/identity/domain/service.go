package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// RegisterRequest creates a local account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	CompanyName string `json:"companyName"`
}

// LoginRequest exchanges credentials for a session token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SSOExchangeRequest exchanges an identity provider token for a session token.
type SSOExchangeRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// AuthResult carries the signed session token and the resolved account.
type AuthResult struct {
	Token string
	User  *User
}

// Service implements registration, login and the SSO identity bridge.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	SSOExchange(ctx context.Context, req SSOExchangeRequest) (*AuthResult, error)
	CurrentUser(ctx context.Context, userID snowflake.ID) (*User, error)
}
