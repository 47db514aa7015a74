// Package token issues and validates signed session tokens.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tvnrapp/relationship-os/internal/config"
	"github.com/tvnrapp/relationship-os/internal/identity/domain"
)

// Claims carries the account identity embedded in a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Role   string `json:"role"`
}

// Manager signs and parses HS256 session tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewManager(cfg config.Config) (*Manager, error) {
	secret := strings.TrimSpace(cfg.AuthJWTSecret)
	if secret == "" {
		return nil, errors.New("auth jwt secret is required")
	}
	ttl := time.Duration(cfg.AuthTokenTTLHrs) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		issuer: cfg.AppName,
		ttl:    ttl,
	}, nil
}

// Generate signs a token for the given account.
func (m *Manager) Generate(user *domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: user.ID.String(),
		Role:   string(user.Role),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(m.secret)
}

// Parse validates a raw token and returns the embedded identity.
func (m *Manager) Parse(raw string) (snowflake.ID, domain.Role, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, "", domain.ErrTokenExpired
		}
		return 0, "", domain.ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return 0, "", domain.ErrInvalidToken
	}

	id, err := snowflake.ParseString(claims.UserID)
	if err != nil {
		return 0, "", domain.ErrInvalidToken
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return 0, "", domain.ErrInvalidToken
	}
	return id, role, nil
}
