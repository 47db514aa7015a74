package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvnrapp/relationship-os/internal/config"
	"github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/identity/repository"
	"github.com/tvnrapp/relationship-os/internal/identity/sso"
	"github.com/tvnrapp/relationship-os/internal/identity/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T, ssoCfg config.SSOConfig) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	cfg := config.Config{
		AppName:         "relationship-os-test",
		AuthJWTSecret:   "test-secret",
		AuthTokenTTLHrs: 168,
		SSO:             ssoCfg,
	}
	tokens, err := token.NewManager(cfg)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		Log:      zap.NewNop(),
		DB:       db,
		Repo:     repository.New(),
		GenID:    node,
		Tokens:   tokens,
		Verifier: sso.NewVerifier(cfg),
	})
	return svc, db
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	svc, _ := newTestService(t, config.SSOConfig{})

	res, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	assert.Equal(t, "alice", res.User.Name)
	assert.NotNil(t, res.User.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t, config.SSOConfig{})
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "not-an-email", Password: "long-enough"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "long-enough", Role: "ADMIN"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "a@b.com", Password: "long-enough", Role: "WIZARD"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, config.SSOConfig{})
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{Email: "dup@example.com", Password: "long-enough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterRequest{Email: "DUP@example.com", Password: "long-enough"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t, config.SSOConfig{})
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterRequest{
		Email:    "seller@example.com",
		Password: "long-enough",
		Role:     "SELLER",
		Name:     "Sally",
	})
	require.NoError(t, err)

	res, err := svc.Login(ctx, domain.LoginRequest{Email: "seller@example.com", Password: "long-enough"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, res.User.Role)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "seller@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "long-enough"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func userInfoServer(t *testing.T, sub, email, name string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":   sub,
			"email": email,
			"name":  name,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSSOExchangeProvisionsOnce(t *testing.T) {
	idp := userInfoServer(t, "auth0|abc123", "sso@example.com", "Sam")
	svc, _ := newTestService(t, config.SSOConfig{UserInfoURL: idp.URL})
	ctx := context.Background()

	first, err := svc.SSOExchange(ctx, domain.SSOExchangeRequest{IDToken: "good-token"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, first.User.Role)
	assert.Equal(t, "sso@example.com", first.User.Email)
	require.NotNil(t, first.User.SSOSub)
	assert.Equal(t, "auth0|abc123", *first.User.SSOSub)

	// A second exchange for the same subject resolves the same account.
	second, err := svc.SSOExchange(ctx, domain.SSOExchangeRequest{IDToken: "good-token"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestSSOExchangeLinksExistingEmail(t *testing.T) {
	idp := userInfoServer(t, "okta|seller1", "linkme@example.com", "")
	svc, _ := newTestService(t, config.SSOConfig{UserInfoURL: idp.URL})
	ctx := context.Background()

	registered, err := svc.Register(ctx, domain.RegisterRequest{
		Email:    "linkme@example.com",
		Password: "long-enough",
		Role:     "SELLER",
	})
	require.NoError(t, err)

	res, err := svc.SSOExchange(ctx, domain.SSOExchangeRequest{IDToken: "good-token"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, res.User.ID)
	assert.Equal(t, domain.RoleSeller, res.User.Role)

	linked, err := svc.CurrentUser(ctx, registered.User.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.SSOSub)
	assert.Equal(t, "okta|seller1", *linked.SSOSub)
}

func TestSSOExchangeWithoutEmailUsesPlaceholder(t *testing.T) {
	idp := userInfoServer(t, "github|777", "", "")
	svc, _ := newTestService(t, config.SSOConfig{UserInfoURL: idp.URL})

	res, err := svc.SSOExchange(context.Background(), domain.SSOExchangeRequest{IDToken: "good-token"})
	require.NoError(t, err)
	assert.True(t, res.User.NeedsEmail())
}

func TestSSOExchangeRejectsBadToken(t *testing.T) {
	idp := userInfoServer(t, "auth0|abc123", "sso@example.com", "Sam")
	svc, _ := newTestService(t, config.SSOConfig{UserInfoURL: idp.URL})

	_, err := svc.SSOExchange(context.Background(), domain.SSOExchangeRequest{IDToken: "bad-token"})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestSSOExchangeUnconfigured(t *testing.T) {
	svc, _ := newTestService(t, config.SSOConfig{})

	_, err := svc.SSOExchange(context.Background(), domain.SSOExchangeRequest{IDToken: "whatever"})
	assert.ErrorIs(t, err, sso.ErrNotConfigured)
}
