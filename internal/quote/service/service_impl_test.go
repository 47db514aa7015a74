package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tvnrapp/relationship-os/internal/clock"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	identityrepo "github.com/tvnrapp/relationship-os/internal/identity/repository"
	"github.com/tvnrapp/relationship-os/internal/quote/domain"
	"github.com/tvnrapp/relationship-os/internal/quote/repository"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	subscriptionrepo "github.com/tvnrapp/relationship-os/internal/subscription/repository"
	subscriptionservice "github.com/tvnrapp/relationship-os/internal/subscription/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type quoteFixture struct {
	svc      domain.Service
	db       *gorm.DB
	clock    *clock.FakeClock
	node     *snowflake.Node
	seller   snowflake.ID
	customer snowflake.ID
}

func newQuoteFixture(t *testing.T) *quoteFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&identitydomain.User{},
		&domain.Quote{},
		&domain.QuoteLine{},
		&subscriptiondomain.Subscription{},
		&subscriptiondomain.Entitlement{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	subs := subscriptionservice.New(subscriptionservice.Params{
		Log:   zap.NewNop(),
		DB:    db,
		Repo:  subscriptionrepo.New(),
		GenID: node,
		Clock: clk,
	})

	seller := &identitydomain.User{ID: node.Generate(), Email: "seller@example.com", Name: "Sally", Role: identitydomain.RoleSeller}
	customer := &identitydomain.User{ID: node.Generate(), Email: "buyer@example.com", Name: "Bob", Role: identitydomain.RoleCustomer}
	require.NoError(t, db.Create(seller).Error)
	require.NoError(t, db.Create(customer).Error)

	svc := New(Params{
		Log:           zap.NewNop(),
		DB:            db,
		Repo:          repository.New(),
		Users:         identityrepo.New(),
		Subscriptions: subs,
		GenID:         node,
		Clock:         clk,
	})
	return &quoteFixture{svc: svc, db: db, clock: clk, node: node, seller: seller.ID, customer: customer.ID}
}

func (f *quoteFixture) createQuote(t *testing.T, lines []domain.LineInput) *domain.Quote {
	t.Helper()
	quote, err := f.svc.Create(context.Background(), f.seller, domain.CreateRequest{
		CustomerID: f.customer.String(),
		Lines:      lines,
	})
	require.NoError(t, err)
	return quote
}

func TestCreateQuoteTotalsAndNumbering(t *testing.T) {
	f := newQuoteFixture(t)

	quote := f.createQuote(t, []domain.LineInput{
		{Type: "SUBSCRIPTION", Name: "Support plan", UnitPrice: 100, Quantity: 2, BillingCycle: "monthly"},
		{Type: "ONE_TIME_PART", Name: "Setup", UnitPrice: 50, Quantity: 0},
	})

	// 100*2 + 50*max(0,1)
	assert.InDelta(t, 250.0, quote.TotalAmount, 1e-9)
	assert.Equal(t, fmt.Sprintf("Q-%d-1000", f.clock.Now().Year()), quote.QuoteNumber)
	assert.Equal(t, domain.StatusSent, quote.Status)
	assert.Equal(t, "USD", quote.Currency)
	require.Len(t, quote.Lines, 2)
	require.NotNil(t, quote.Lines[0].BillingCycle)
	assert.Equal(t, "MONTHLY", *quote.Lines[0].BillingCycle)

	second := f.createQuote(t, []domain.LineInput{
		{Type: "SUBSCRIPTION", Name: "Another", UnitPrice: 10},
	})
	assert.Equal(t, fmt.Sprintf("Q-%d-1001", f.clock.Now().Year()), second.QuoteNumber)
}

func TestCreateQuoteValidation(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.seller, domain.CreateRequest{CustomerID: f.customer.String()})
	assert.ErrorIs(t, err, domain.ErrNoLines)

	_, err = f.svc.Create(ctx, f.seller, domain.CreateRequest{
		CustomerID: "not-a-snowflake-id",
		Lines:      []domain.LineInput{{Type: "X", Name: "x", UnitPrice: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	// The target must hold the customer role.
	_, err = f.svc.Create(ctx, f.seller, domain.CreateRequest{
		CustomerID: f.seller.String(),
		Lines:      []domain.LineInput{{Type: "X", Name: "x", UnitPrice: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

func TestGetOwnedIsolation(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t, []domain.LineInput{{Type: "X", Name: "x", UnitPrice: 1}})

	_, err := f.svc.GetOwned(ctx, f.seller, identitydomain.RoleSeller, quote.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetOwned(ctx, f.customer, identitydomain.RoleCustomer, quote.ID)
	assert.NoError(t, err)

	stranger := f.node.Generate()
	_, err = f.svc.GetOwned(ctx, stranger, identitydomain.RoleCustomer, quote.ID)
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)

	// Admins see everything.
	_, err = f.svc.GetOwned(ctx, stranger, identitydomain.RoleAdmin, quote.ID)
	assert.NoError(t, err)
}

func TestApprovalProvisionsSubscription(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()

	quote := f.createQuote(t, []domain.LineInput{
		{Type: "SUBSCRIPTION", Name: "Support plan", UnitPrice: 100, Quantity: 3, BillingCycle: "MONTHLY"},
		{Type: "DISCOUNT", Name: "Intro discount", UnitPrice: -20, Quantity: 1},
		{Type: "ONE_TIME_PART", Name: "Install kit", UnitPrice: 50, Quantity: 1},
	})

	res, err := f.svc.SetStatus(ctx, f.customer, quote.ID, domain.SetStatusRequest{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, res.Quote.Status)

	sub := res.Subscription
	require.NotNil(t, sub)
	assert.Equal(t, "Subscription from "+quote.QuoteNumber, sub.Name)
	assert.Equal(t, subscriptiondomain.StatusActive, sub.Status)
	assert.True(t, sub.AutoRenew)
	assert.Equal(t, f.clock.Now(), sub.StartDate)
	assert.Equal(t, f.clock.Now().Add(365*24*time.Hour), sub.RenewalDate)

	// Discount and one-time lines never become entitlements.
	require.Len(t, sub.Entitlements, 1)
	assert.Equal(t, "SUBSCRIPTION", sub.Entitlements[0].Type)
	assert.Equal(t, 3, sub.Entitlements[0].Capacity)
}

func TestRejectionSkipsProvisioning(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t, []domain.LineInput{{Type: "SUBSCRIPTION", Name: "x", UnitPrice: 10, BillingCycle: "MONTHLY"}})

	res, err := f.svc.SetStatus(ctx, f.customer, quote.ID, domain.SetStatusRequest{Status: "REJECTED", Comment: "too pricey"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, res.Quote.Status)
	assert.Nil(t, res.Subscription)
	require.NotNil(t, res.Quote.Notes)
	assert.Equal(t, "too pricey", *res.Quote.Notes)

	var count int64
	require.NoError(t, f.db.Model(&subscriptiondomain.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSetStatusGuards(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	quote := f.createQuote(t, []domain.LineInput{{Type: "X", Name: "x", UnitPrice: 1}})

	_, err := f.svc.SetStatus(ctx, f.customer, quote.ID, domain.SetStatusRequest{Status: "SENT"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	// Only the owning customer decides.
	_, err = f.svc.SetStatus(ctx, f.seller, quote.ID, domain.SetStatusRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)

	_, err = f.svc.SetStatus(ctx, f.customer, quote.ID, domain.SetStatusRequest{Status: "APPROVED"})
	require.NoError(t, err)

	// A resolved quote never transitions again.
	_, err = f.svc.SetStatus(ctx, f.customer, quote.ID, domain.SetStatusRequest{Status: "REJECTED"})
	assert.ErrorIs(t, err, domain.ErrQuoteResolved)

	_, err = f.svc.SetStatus(ctx, f.customer, f.node.Generate(), domain.SetStatusRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)
}
