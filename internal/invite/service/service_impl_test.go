package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvnrapp/relationship-os/internal/clock"
	"github.com/tvnrapp/relationship-os/internal/config"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	identityrepo "github.com/tvnrapp/relationship-os/internal/identity/repository"
	"github.com/tvnrapp/relationship-os/internal/identity/token"
	"github.com/tvnrapp/relationship-os/internal/invite/domain"
	"github.com/tvnrapp/relationship-os/internal/invite/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type inviteFixture struct {
	svc    domain.Service
	db     *gorm.DB
	clock  *clock.FakeClock
	node   *snowflake.Node
	seller snowflake.ID
}

func newInviteFixture(t *testing.T) *inviteFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&identitydomain.User{}, &domain.Invite{}))

	cfg := config.Config{
		AppName:         "relationship-os-test",
		AuthJWTSecret:   "test-secret",
		AuthTokenTTLHrs: 168,
		FrontendBaseURL: "https://app.example.com",
	}
	tokens, err := token.NewManager(cfg)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	seller := &identitydomain.User{
		ID:    node.Generate(),
		Email: "seller@example.com",
		Name:  "Sally Seller",
		Role:  identitydomain.RoleSeller,
	}
	require.NoError(t, db.Create(seller).Error)

	svc := New(Params{
		Log:    zap.NewNop(),
		DB:     db,
		Config: cfg,
		Repo:   repository.New(),
		Users:  identityrepo.New(),
		Tokens: tokens,
		GenID:  node,
		Clock:  clk,
	})
	return &inviteFixture{svc: svc, db: db, clock: clk, node: node, seller: seller.ID}
}

func TestCreateAndValidateInvite(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{
		Email:       "Buyer@Example.com",
		Role:        "customer",
		CompanyName: "Acme Co",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RawToken)
	assert.Contains(t, res.AcceptURL, "https://app.example.com/invite/accept?token=")
	// Only the hash lands in storage.
	assert.NotEqual(t, res.RawToken, res.Invite.TokenHash)

	info, err := f.svc.Validate(ctx, res.RawToken)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", info.Email)
	assert.Equal(t, "CUSTOMER", info.Role)
	assert.Equal(t, "Acme Co", info.CompanyName)
	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), info.ExpiresAt)
}

func TestReinviteSupersedesOldToken(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{Email: "buyer@example.com", Role: "CUSTOMER"})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{Email: "buyer@example.com", Role: "CUSTOMER"})
	require.NoError(t, err)

	_, err = f.svc.Validate(ctx, first.RawToken)
	assert.ErrorIs(t, err, domain.ErrInviteNotFound)

	_, err = f.svc.Validate(ctx, second.RawToken)
	assert.NoError(t, err)
}

func TestValidateExpiryBoundary(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{Email: "buyer@example.com", Role: "CUSTOMER"})
	require.NoError(t, err)

	f.clock.Advance(7*24*time.Hour - time.Second)
	_, err = f.svc.Validate(ctx, res.RawToken)
	assert.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.svc.Validate(ctx, res.RawToken)
	assert.ErrorIs(t, err, domain.ErrInviteExpired)
}

func TestAcceptProvisionsNewAccount(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{
		Email:       "new@example.com",
		Role:        "CUSTOMER",
		CompanyName: "Acme Co",
	})
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, domain.AcceptRequest{
		Token:       res.RawToken,
		Name:        "Nina New",
		ExternalSub: "auth0|nina",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, accepted.Token)
	assert.Equal(t, "new@example.com", accepted.User.Email)
	assert.Equal(t, identitydomain.RoleCustomer, accepted.User.Role)
	require.NotNil(t, accepted.User.CompanyName)
	assert.Equal(t, "Acme Co", *accepted.User.CompanyName)
	require.NotNil(t, accepted.User.SSOSub)
	assert.Equal(t, "auth0|nina", *accepted.User.SSOSub)
	assert.Nil(t, accepted.User.PasswordHash)
}

func TestAcceptIsSingleUse(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{Email: "once@example.com", Role: "CUSTOMER"})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, domain.AcceptRequest{Token: res.RawToken})
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, domain.AcceptRequest{Token: res.RawToken})
	assert.ErrorIs(t, err, domain.ErrInviteAlreadyUsed)

	_, err = f.svc.Validate(ctx, res.RawToken)
	assert.ErrorIs(t, err, domain.ErrInviteAlreadyUsed)
}

func TestAcceptUpdatesExistingAccountAndClearsPassword(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	hash := "bcrypt-hash-placeholder"
	existing := &identitydomain.User{
		ID:           f.node.Generate(),
		Email:        "existing@example.com",
		Name:         "Existing",
		Role:         identitydomain.RoleCustomer,
		PasswordHash: &hash,
	}
	require.NoError(t, f.db.Create(existing).Error)

	res, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{
		Email:       "existing@example.com",
		Role:        "SELLER",
		CompanyName: "Upgraded LLC",
	})
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, domain.AcceptRequest{Token: res.RawToken})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, accepted.User.ID)
	assert.Equal(t, identitydomain.RoleSeller, accepted.User.Role)
	require.NotNil(t, accepted.User.CompanyName)
	assert.Equal(t, "Upgraded LLC", *accepted.User.CompanyName)
	assert.Nil(t, accepted.User.PasswordHash)
}

func TestAcceptRejectsUnknownToken(t *testing.T) {
	f := newInviteFixture(t)

	_, err := f.svc.Accept(context.Background(), domain.AcceptRequest{Token: "deadbeef"})
	assert.ErrorIs(t, err, domain.ErrInviteNotFound)

	_, err = f.svc.Accept(context.Background(), domain.AcceptRequest{Token: "   "})
	assert.ErrorIs(t, err, domain.ErrInviteNotFound)
}

func TestListPendingSkipsExpiredAndAccepted(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	live, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{Email: "live@example.com", Role: "CUSTOMER"})
	require.NoError(t, err)
	used, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{Email: "used@example.com", Role: "CUSTOMER"})
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, domain.AcceptRequest{Token: used.RawToken})
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx, f.seller)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, live.Invite.ID, pending[0].ID)

	f.clock.Advance(8 * 24 * time.Hour)
	pending, err = f.svc.ListPending(ctx, f.seller)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newInviteFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{Email: "nope", Role: "CUSTOMER"})
	assert.ErrorIs(t, err, identitydomain.ErrInvalidEmail)

	_, err = f.svc.Create(ctx, f.seller, domain.CreateRequest{Email: "ok@example.com", Role: "WIZARD"})
	assert.ErrorIs(t, err, identitydomain.ErrInvalidRole)
}
