package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	chatdomain "github.com/tvnrapp/relationship-os/internal/chat/domain"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"gorm.io/gorm"
)

// SellerOverview aggregates a seller's book of business for the landing view.
type SellerOverview struct {
	TotalQuotes              int64                             `json:"totalQuotes"`
	QuotesByStatus           map[quotedomain.Status]int64      `json:"quotesByStatus"`
	TotalActiveSubscriptions int64                             `json:"totalActiveSubscriptions"`
	EstimatedMRR             float64                           `json:"estimatedMrr"`
	RecentQuotes             []quotedomain.Quote               `json:"recentQuotes"`
	RecentSubscriptions      []subscriptiondomain.Subscription `json:"recentSubscriptions"`
	RecentMessages           []chatdomain.ChatMessage          `json:"recentMessages"`
}

// CustomerOverview aggregates a customer's own quotes and subscriptions.
type CustomerOverview struct {
	TotalQuotes           int64                             `json:"totalQuotes"`
	TotalSubscriptions    int64                             `json:"totalSubscriptions"`
	ActiveSubscriptions   int64                             `json:"activeSubscriptions"`
	EstimatedMonthlySpend float64                           `json:"estimatedMonthlySpend"`
	RecentQuotes          []quotedomain.Quote               `json:"recentQuotes"`
	Subscriptions         []subscriptiondomain.Subscription `json:"subscriptions"`
	RecentMessages        []chatdomain.ChatMessage          `json:"recentMessages"`
}

// CustomerDetail is the seller's drill-down into one customer relationship.
type CustomerDetail struct {
	Customer      identitydomain.User               `json:"customer"`
	Quotes        []quotedomain.Quote               `json:"quotes"`
	Subscriptions []subscriptiondomain.Subscription `json:"subscriptions"`
	Messages      []chatdomain.ChatMessage          `json:"messages"`
}

// Repository runs the read-side aggregation queries. These are computed per
// request; nothing here mutates state.
type Repository interface {
	QuoteStatusCountsBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) (map[quotedomain.Status]int64, error)
	CountActiveSubscriptionsBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) (int64, error)
	CountSubscriptionsByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) (int64, error)
	CountActiveSubscriptionsByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) (int64, error)
	// ActiveLinesBySeller returns quote lines backing the seller's ACTIVE
	// subscriptions, the input to the recurring revenue estimate.
	ActiveLinesBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) ([]quotedomain.QuoteLine, error)
	ActiveLinesByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) ([]quotedomain.QuoteLine, error)
	RecentQuotesBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID, limit int) ([]quotedomain.Quote, error)
	RecentQuotesByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID, limit int) ([]quotedomain.Quote, error)
	RecentSubscriptionsBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID, limit int) ([]subscriptiondomain.Subscription, error)
	RecentMessagesBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID, limit int) ([]chatdomain.ChatMessage, error)
	RecentMessagesByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID, limit int) ([]chatdomain.ChatMessage, error)
	// CustomersOfSeller lists the distinct customers this seller has quoted,
	// ordered by name.
	CustomersOfSeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) ([]identitydomain.User, error)
	QuotesForPair(ctx context.Context, db *gorm.DB, seller, customer snowflake.ID) ([]quotedomain.Quote, error)
	SubscriptionsForPair(ctx context.Context, db *gorm.DB, seller, customer snowflake.ID) ([]subscriptiondomain.Subscription, error)
	// LastMessagesForPair returns the newest limit messages of the pair in
	// ascending order.
	LastMessagesForPair(ctx context.Context, db *gorm.DB, customer, seller snowflake.ID, limit int) ([]chatdomain.ChatMessage, error)
}

// Service assembles the dashboard views.
type Service interface {
	SellerOverview(ctx context.Context, seller snowflake.ID) (*SellerOverview, error)
	CustomerOverview(ctx context.Context, customer snowflake.ID) (*CustomerOverview, error)
	SellerCustomers(ctx context.Context, seller snowflake.ID) ([]identitydomain.User, error)
	SellerCustomerDetail(ctx context.Context, seller, customer snowflake.ID) (*CustomerDetail, error)
}
