package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tvnrapp/relationship-os/internal/config"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

var (
	// ErrNotConfigured means no secret key was supplied.
	ErrNotConfigured = errors.New("payment provider not configured")
	// ErrUpstream covers transport failures and non-2xx provider responses.
	ErrUpstream = errors.New("payment provider request failed")
)

// CheckoutParams describes one hosted checkout session.
type CheckoutParams struct {
	// AmountMinor is the charge amount in minor currency units.
	AmountMinor int64
	Currency    string
	ProductName string
	Reference   string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the provider's created session.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client creates hosted checkout sessions against the Stripe API.
type Client struct {
	log       *zap.Logger
	http      *http.Client
	secretKey string
	baseURL   string
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.Stripe.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &Client{
		log:       log.Named("providers.payment"),
		http:      &http.Client{Timeout: requestTimeout},
		secretKey: cfg.Stripe.SecretKey,
		baseURL:   baseURL,
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.secretKey) != ""
}

// CreateCheckoutSession posts a form-encoded session request and returns the
// hosted payment page.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("client_reference_id", params.Reference)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(params.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.AmountMinor, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("checkout session request failed", zap.Error(err))
		return nil, ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("checkout session rejected", zap.Int("status_code", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, ErrUpstream
	}
	if session.URL == "" {
		return nil, ErrUpstream
	}
	return &session, nil
}
