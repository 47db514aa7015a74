package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvnrapp/relationship-os/internal/config"
	"github.com/tvnrapp/relationship-os/internal/identity/domain"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	mgr, err := NewManager(config.Config{
		AppName:         "relationship-os-test",
		AuthJWTSecret:   "test-secret",
		AuthTokenTTLHrs: 168,
	})
	require.NoError(t, err)
	return mgr
}

func TestManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(config.Config{AuthJWTSecret: "  "})
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := newManager(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	user := &domain.User{ID: node.Generate(), Role: domain.RoleSeller}
	signed, err := mgr.Generate(user)
	require.NoError(t, err)

	id, role, err := mgr.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, domain.RoleSeller, role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	mgr := newManager(t)
	other, err := NewManager(config.Config{
		AppName:         "relationship-os-test",
		AuthJWTSecret:   "another-secret",
		AuthTokenTTLHrs: 168,
	})
	require.NoError(t, err)

	node, _ := snowflake.NewNode(1)
	signed, err := other.Generate(&domain.User{ID: node.Generate(), Role: domain.RoleCustomer})
	require.NoError(t, err)

	_, _, err = mgr.Parse(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	mgr := newManager(t)
	node, _ := snowflake.NewNode(1)
	id := node.Generate()

	past := time.Now().UTC().Add(-time.Hour)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(past),
		},
		UserID: id.String(),
		Role:   string(domain.RoleCustomer),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = mgr.Parse(signed)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestParseRejectsGarbage(t *testing.T) {
	mgr := newManager(t)
	_, _, err := mgr.Parse("not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	mgr := newManager(t)
	node, _ := snowflake.NewNode(1)
	id := node.Generate()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
		UserID: id.String(),
		Role:   "SUPERUSER",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, _, err = mgr.Parse(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
