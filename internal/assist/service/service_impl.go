package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/assist/domain"
	"github.com/tvnrapp/relationship-os/internal/config"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/internal/observability/metrics"
	"github.com/tvnrapp/relationship-os/internal/providers/ai"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	log     *zap.Logger
	db      *gorm.DB
	quotes  quotedomain.Service
	subs    subscriptiondomain.Repository
	client  *ai.Client
	holder  *config.AssistConfigHolder
	metrics *metrics.Metrics
}

type Params struct {
	fx.In

	Log     *zap.Logger
	DB      *gorm.DB
	Quotes  quotedomain.Service
	Subs    subscriptiondomain.Repository
	Client  *ai.Client
	Holder  *config.AssistConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("assist.service"),
		db:      p.DB,
		quotes:  p.Quotes,
		subs:    p.Subs,
		client:  p.Client,
		holder:  p.Holder,
		metrics: p.Metrics,
	}
}

func (s *Service) QuoteSummary(ctx context.Context, caller *identitydomain.User, quoteID snowflake.ID) (*domain.Result, error) {
	quote, err := s.quotes.GetOwned(ctx, caller.ID, caller.Role, quoteID)
	if err != nil {
		return nil, err
	}

	cfg := s.holder.Get()
	text, err := s.client.Complete(ctx, cfg.SummarySystemPrompt, renderQuotePrompt(quote), cfg.Temperature, cfg.MaxOutputTokens)
	if err != nil {
		s.log.Warn("quote summary degraded", zap.String("quote_number", quote.QuoteNumber), zap.Error(err))
		s.metrics.RecordAssistRequest(ctx, "quote_summary", "degraded")
		return &domain.Result{Text: quotePlaceholder(quote), Degraded: true}, nil
	}

	s.metrics.RecordAssistRequest(ctx, "quote_summary", "ok")
	return &domain.Result{Text: text}, nil
}

func (s *Service) SubscriptionInsights(ctx context.Context, caller *identitydomain.User) (*domain.Result, error) {
	var (
		subs []subscriptiondomain.Subscription
		err  error
	)
	if caller.Role == identitydomain.RoleCustomer {
		subs, err = s.subs.ListByCustomer(ctx, s.db, caller.ID)
	} else {
		subs, err = s.subs.ListBySeller(ctx, s.db, caller.ID)
	}
	if err != nil {
		return nil, err
	}

	if len(subs) == 0 {
		s.metrics.RecordAssistRequest(ctx, "subscription_insights", "empty")
		return &domain.Result{Text: "No subscriptions yet. Insights will appear once a quote has been approved."}, nil
	}

	payload, err := json.Marshal(subs)
	if err != nil {
		return nil, err
	}

	cfg := s.holder.Get()
	prompt := "Analyze these subscriptions and their entitlements:\n" + string(payload)
	text, err := s.client.Complete(ctx, cfg.InsightsSystemPrompt, prompt, cfg.Temperature, cfg.MaxOutputTokens)
	if err != nil {
		s.log.Warn("subscription insights degraded", zap.Error(err))
		s.metrics.RecordAssistRequest(ctx, "subscription_insights", "degraded")
		return &domain.Result{Text: insightsPlaceholder(subs), Degraded: true}, nil
	}

	s.metrics.RecordAssistRequest(ctx, "subscription_insights", "ok")
	return &domain.Result{Text: text}, nil
}

func renderQuotePrompt(quote *quotedomain.Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quote %s, status %s, total %.2f %s.\n", quote.QuoteNumber, quote.Status, quote.TotalAmount, quote.Currency)
	if quote.Notes != nil && strings.TrimSpace(*quote.Notes) != "" {
		fmt.Fprintf(&b, "Notes: %s\n", *quote.Notes)
	}
	b.WriteString("Lines:\n")
	for _, line := range quote.Lines {
		cycle := "one-time"
		if line.BillingCycle != nil {
			cycle = *line.BillingCycle
		}
		fmt.Fprintf(&b, "- %s (%s): %.2f x %d, %s\n", line.Name, line.Type, line.UnitPrice, line.Quantity, cycle)
	}
	return b.String()
}

func quotePlaceholder(quote *quotedomain.Quote) string {
	return fmt.Sprintf("AI summary is unavailable right now. Quote %s covers %d line items for a total of %.2f %s.",
		quote.QuoteNumber, len(quote.Lines), quote.TotalAmount, quote.Currency)
}

func insightsPlaceholder(subs []subscriptiondomain.Subscription) string {
	active := 0
	for _, sub := range subs {
		if sub.Status == subscriptiondomain.StatusActive {
			active++
		}
	}
	return fmt.Sprintf("AI insights are unavailable right now. You have %d subscriptions, %d of them active.", len(subs), active)
}
