package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/checkout/domain"
	"github.com/tvnrapp/relationship-os/internal/config"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/observability/metrics"
	"github.com/tvnrapp/relationship-os/internal/providers/payment"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log         *zap.Logger
	quotes      quotedomain.Service
	provider    *payment.Client
	frontendURL string
	metrics     *metrics.Metrics
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   config.Config
	Quotes   quotedomain.Service
	Provider *payment.Client
	Metrics  *metrics.Metrics `optional:"true"`
}

func New(p Params) domain.Service {
	return &Service{
		log:         p.Log.Named("checkout.service"),
		quotes:      p.Quotes,
		provider:    p.Provider,
		frontendURL: strings.TrimSuffix(p.Config.FrontendBaseURL, "/"),
		metrics:     p.Metrics,
	}
}

func (s *Service) CreateCheckout(ctx context.Context, customer snowflake.ID, quoteID snowflake.ID) (*domain.Result, error) {
	quote, err := s.quotes.GetOwned(ctx, customer, identitydomain.RoleCustomer, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.CustomerID != customer {
		return nil, quotedomain.ErrQuoteNotFound
	}
	if quote.Status == quotedomain.StatusRejected {
		return nil, domain.ErrQuoteNotPayable
	}

	session, err := s.provider.CreateCheckoutSession(ctx, payment.CheckoutParams{
		AmountMinor: int64(math.Round(quote.TotalAmount * 100)),
		Currency:    quote.Currency,
		ProductName: "Quote " + quote.QuoteNumber,
		Reference:   quote.QuoteNumber,
		SuccessURL:  fmt.Sprintf("%s/quotes/%s?checkout=success", s.frontendURL, quote.ID),
		CancelURL:   fmt.Sprintf("%s/quotes/%s?checkout=cancelled", s.frontendURL, quote.ID),
	})
	if err != nil {
		s.metrics.RecordCheckoutSession(ctx, "stripe", "error")
		return nil, err
	}

	s.metrics.RecordCheckoutSession(ctx, "stripe", "ok")
	s.log.Info("checkout session created",
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("session_id", session.ID),
	)
	return &domain.Result{SessionID: session.ID, URL: session.URL}, nil
}
