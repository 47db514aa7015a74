package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	checkoutdomain "github.com/tvnrapp/relationship-os/internal/checkout/domain"
	"github.com/tvnrapp/relationship-os/internal/config"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/providers/payment"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	"go.uber.org/zap"
)

// stubQuoteService serves a single canned quote with ownership checks.
type stubQuoteService struct {
	quote *quotedomain.Quote
}

func (s *stubQuoteService) Create(ctx context.Context, seller snowflake.ID, req quotedomain.CreateRequest) (*quotedomain.Quote, error) {
	panic("not used")
}

func (s *stubQuoteService) ListByCustomer(ctx context.Context, customer snowflake.ID) ([]quotedomain.Quote, error) {
	panic("not used")
}

func (s *stubQuoteService) ListBySeller(ctx context.Context, seller snowflake.ID) ([]quotedomain.Quote, error) {
	panic("not used")
}

func (s *stubQuoteService) GetOwned(ctx context.Context, caller snowflake.ID, role identitydomain.Role, id snowflake.ID) (*quotedomain.Quote, error) {
	if s.quote == nil || s.quote.ID != id {
		return nil, quotedomain.ErrQuoteNotFound
	}
	if role != identitydomain.RoleAdmin && s.quote.CustomerID != caller && s.quote.SellerID != caller {
		return nil, quotedomain.ErrQuoteNotFound
	}
	return s.quote, nil
}

func (s *stubQuoteService) SetStatus(ctx context.Context, customer, id snowflake.ID, req quotedomain.SetStatusRequest) (*quotedomain.SetStatusResult, error) {
	panic("not used")
}

type checkoutFixture struct {
	node  *snowflake.Node
	quote *quotedomain.Quote
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	quote := &quotedomain.Quote{
		ID:          node.Generate(),
		QuoteNumber: "Q-2026-1004",
		CustomerID:  node.Generate(),
		SellerID:    node.Generate(),
		TotalAmount: 199.99,
		Currency:    "USD",
		Status:      quotedomain.StatusSent,
	}
	return &checkoutFixture{node: node, quote: quote}
}

func (f *checkoutFixture) service(t *testing.T, stripeCfg config.StripeConfig) checkoutdomain.Service {
	t.Helper()
	cfg := config.Config{
		FrontendBaseURL: "https://app.example.com",
		Stripe:          stripeCfg,
	}
	return New(Params{
		Log:      zap.NewNop(),
		Config:   cfg,
		Quotes:   &stubQuoteService{quote: f.quote},
		Provider: payment.NewClient(cfg, zap.NewNop()),
	})
}

func stripeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "sk_test_123", user)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "payment", r.PostForm.Get("mode"))
		require.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		require.Equal(t, "19999", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		require.Equal(t, "Q-2026-1004", r.PostForm.Get("client_reference_id"))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":  "cs_test_42",
			"url": "https://checkout.stripe.com/pay/cs_test_42",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCreateCheckoutSession(t *testing.T) {
	f := newCheckoutFixture(t)
	stripe := stripeServer(t)
	svc := f.service(t, config.StripeConfig{SecretKey: "sk_test_123", BaseURL: stripe.URL})

	res, err := svc.CreateCheckout(context.Background(), f.quote.CustomerID, f.quote.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_42", res.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_test_42", res.URL)
}

func TestCreateCheckoutRequiresOwnership(t *testing.T) {
	f := newCheckoutFixture(t)
	svc := f.service(t, config.StripeConfig{SecretKey: "sk_test_123"})

	_, err := svc.CreateCheckout(context.Background(), f.node.Generate(), f.quote.ID)
	assert.ErrorIs(t, err, quotedomain.ErrQuoteNotFound)
}

func TestCreateCheckoutRejectsRejectedQuote(t *testing.T) {
	f := newCheckoutFixture(t)
	f.quote.Status = quotedomain.StatusRejected
	svc := f.service(t, config.StripeConfig{SecretKey: "sk_test_123"})

	_, err := svc.CreateCheckout(context.Background(), f.quote.CustomerID, f.quote.ID)
	assert.ErrorIs(t, err, checkoutdomain.ErrQuoteNotPayable)
}

func TestCreateCheckoutWithoutProvider(t *testing.T) {
	f := newCheckoutFixture(t)
	svc := f.service(t, config.StripeConfig{})

	_, err := svc.CreateCheckout(context.Background(), f.quote.CustomerID, f.quote.ID)
	assert.ErrorIs(t, err, payment.ErrNotConfigured)
}

func TestCreateCheckoutUpstreamFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)
	svc := f.service(t, config.StripeConfig{SecretKey: "sk_test_123", BaseURL: broken.URL})

	_, err := svc.CreateCheckout(context.Background(), f.quote.CustomerID, f.quote.ID)
	assert.ErrorIs(t, err, payment.ErrUpstream)
}
