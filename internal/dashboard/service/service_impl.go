package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/dashboard/domain"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sellerRecentQuotes   = 5
	sellerRecentSubs     = 5
	sellerRecentMessages = 10

	customerRecentQuotes   = 10
	customerRecentMessages = 20

	pairMessageWindow = 50
)

type Service struct {
	log   *zap.Logger
	db    *gorm.DB
	repo  domain.Repository
	users identitydomain.Repository
	subs  subscriptiondomain.Repository
}

type Params struct {
	fx.In

	Log   *zap.Logger
	DB    *gorm.DB
	Repo  domain.Repository
	Users identitydomain.Repository
	Subs  subscriptiondomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("dashboard.service"),
		db:    p.DB,
		repo:  p.Repo,
		users: p.Users,
		subs:  p.Subs,
	}
}

func (s *Service) SellerOverview(ctx context.Context, seller snowflake.ID) (*domain.SellerOverview, error) {
	counts, err := s.repo.QuoteStatusCountsBySeller(ctx, s.db, seller)
	if err != nil {
		return nil, err
	}
	var totalQuotes int64
	for _, n := range counts {
		totalQuotes += n
	}

	activeSubs, err := s.repo.CountActiveSubscriptionsBySeller(ctx, s.db, seller)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.ActiveLinesBySeller(ctx, s.db, seller)
	if err != nil {
		return nil, err
	}

	recentQuotes, err := s.repo.RecentQuotesBySeller(ctx, s.db, seller, sellerRecentQuotes)
	if err != nil {
		return nil, err
	}
	recentSubs, err := s.repo.RecentSubscriptionsBySeller(ctx, s.db, seller, sellerRecentSubs)
	if err != nil {
		return nil, err
	}
	recentMessages, err := s.repo.RecentMessagesBySeller(ctx, s.db, seller, sellerRecentMessages)
	if err != nil {
		return nil, err
	}

	return &domain.SellerOverview{
		TotalQuotes:              totalQuotes,
		QuotesByStatus:           counts,
		TotalActiveSubscriptions: activeSubs,
		EstimatedMRR:             estimateMonthly(lines),
		RecentQuotes:             recentQuotes,
		RecentSubscriptions:      recentSubs,
		RecentMessages:           recentMessages,
	}, nil
}

func (s *Service) CustomerOverview(ctx context.Context, customer snowflake.ID) (*domain.CustomerOverview, error) {
	quotes, err := s.repo.RecentQuotesByCustomer(ctx, s.db, customer, customerRecentQuotes)
	if err != nil {
		return nil, err
	}

	totalSubs, err := s.repo.CountSubscriptionsByCustomer(ctx, s.db, customer)
	if err != nil {
		return nil, err
	}
	activeSubs, err := s.repo.CountActiveSubscriptionsByCustomer(ctx, s.db, customer)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.ActiveLinesByCustomer(ctx, s.db, customer)
	if err != nil {
		return nil, err
	}

	subs, err := s.subs.ListByCustomer(ctx, s.db, customer)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.RecentMessagesByCustomer(ctx, s.db, customer, customerRecentMessages)
	if err != nil {
		return nil, err
	}

	var totalQuotes int64
	if err := s.db.WithContext(ctx).
		Model(&quotedomain.Quote{}).
		Where("customer_id = ?", customer).
		Count(&totalQuotes).Error; err != nil {
		return nil, err
	}

	return &domain.CustomerOverview{
		TotalQuotes:           totalQuotes,
		TotalSubscriptions:    totalSubs,
		ActiveSubscriptions:   activeSubs,
		EstimatedMonthlySpend: estimateMonthly(lines),
		RecentQuotes:          quotes,
		Subscriptions:         subs,
		RecentMessages:        messages,
	}, nil
}

func (s *Service) SellerCustomers(ctx context.Context, seller snowflake.ID) ([]identitydomain.User, error) {
	return s.repo.CustomersOfSeller(ctx, s.db, seller)
}

func (s *Service) SellerCustomerDetail(ctx context.Context, seller, customer snowflake.ID) (*domain.CustomerDetail, error) {
	user, err := s.users.FindByID(ctx, s.db, customer)
	if err != nil {
		if errors.Is(err, identitydomain.ErrUserNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}

	quotes, err := s.repo.QuotesForPair(ctx, s.db, seller, customer)
	if err != nil {
		return nil, err
	}
	// No quotes means no relationship; report not found rather than an empty
	// detail page to avoid probing other sellers' customers.
	if len(quotes) == 0 {
		return nil, domain.ErrCustomerNotFound
	}

	subs, err := s.repo.SubscriptionsForPair(ctx, s.db, seller, customer)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.LastMessagesForPair(ctx, s.db, customer, seller, pairMessageWindow)
	if err != nil {
		return nil, err
	}

	return &domain.CustomerDetail{
		Customer:      *user,
		Quotes:        quotes,
		Subscriptions: subs,
		Messages:      messages,
	}, nil
}

func estimateMonthly(lines []quotedomain.QuoteLine) float64 {
	var total float64
	for _, line := range lines {
		total += quotedomain.MonthlyValue(line)
	}
	return quotedomain.Round2(total)
}
