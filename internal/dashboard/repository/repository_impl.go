package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	chatdomain "github.com/tvnrapp/relationship-os/internal/chat/domain"
	"github.com/tvnrapp/relationship-os/internal/dashboard/domain"
	identitydomain "github.com/tvnrapp/relationship-os/internal/identity/domain"
	quotedomain "github.com/tvnrapp/relationship-os/internal/quote/domain"
	subscriptiondomain "github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func New() domain.Repository {
	return &repo{}
}

func (r *repo) QuoteStatusCountsBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) (map[quotedomain.Status]int64, error) {
	var rows []struct {
		Status quotedomain.Status
		Count  int64
	}
	err := db.WithContext(ctx).
		Model(&quotedomain.Quote{}).
		Select("status, COUNT(*) AS count").
		Where("seller_id = ?", seller).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[quotedomain.Status]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repo) CountActiveSubscriptionsBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&subscriptiondomain.Subscription{}).
		Joins("JOIN quotes ON quotes.id = subscriptions.quote_id").
		Where("quotes.seller_id = ? AND subscriptions.status = ?", seller, subscriptiondomain.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *repo) CountSubscriptionsByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&subscriptiondomain.Subscription{}).
		Where("customer_id = ?", customer).
		Count(&count).Error
	return count, err
}

func (r *repo) CountActiveSubscriptionsByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&subscriptiondomain.Subscription{}).
		Where("customer_id = ? AND status = ?", customer, subscriptiondomain.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *repo) ActiveLinesBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) ([]quotedomain.QuoteLine, error) {
	var lines []quotedomain.QuoteLine
	err := db.WithContext(ctx).
		Model(&quotedomain.QuoteLine{}).
		Joins("JOIN subscriptions ON subscriptions.quote_id = quote_lines.quote_id").
		Joins("JOIN quotes ON quotes.id = quote_lines.quote_id").
		Where("subscriptions.status = ? AND quotes.seller_id = ?", subscriptiondomain.StatusActive, seller).
		Find(&lines).Error
	return lines, err
}

func (r *repo) ActiveLinesByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) ([]quotedomain.QuoteLine, error) {
	var lines []quotedomain.QuoteLine
	err := db.WithContext(ctx).
		Model(&quotedomain.QuoteLine{}).
		Joins("JOIN subscriptions ON subscriptions.quote_id = quote_lines.quote_id").
		Where("subscriptions.status = ? AND subscriptions.customer_id = ?", subscriptiondomain.StatusActive, customer).
		Find(&lines).Error
	return lines, err
}

func (r *repo) RecentQuotesBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID, limit int) ([]quotedomain.Quote, error) {
	var quotes []quotedomain.Quote
	err := db.WithContext(ctx).
		Preload("Lines").
		Where("seller_id = ?", seller).
		Order("created_at DESC").
		Limit(limit).
		Find(&quotes).Error
	return quotes, err
}

func (r *repo) RecentQuotesByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID, limit int) ([]quotedomain.Quote, error) {
	var quotes []quotedomain.Quote
	err := db.WithContext(ctx).
		Preload("Lines").
		Where("customer_id = ?", customer).
		Order("created_at DESC").
		Limit(limit).
		Find(&quotes).Error
	return quotes, err
}

func (r *repo) RecentSubscriptionsBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID, limit int) ([]subscriptiondomain.Subscription, error) {
	var subs []subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Preload("Entitlements").
		Joins("JOIN quotes ON quotes.id = subscriptions.quote_id").
		Where("quotes.seller_id = ?", seller).
		Order("subscriptions.created_at DESC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

func (r *repo) RecentMessagesBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID, limit int) ([]chatdomain.ChatMessage, error) {
	var messages []chatdomain.ChatMessage
	err := db.WithContext(ctx).
		Where("seller_id = ?", seller).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *repo) RecentMessagesByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID, limit int) ([]chatdomain.ChatMessage, error) {
	var messages []chatdomain.ChatMessage
	err := db.WithContext(ctx).
		Where("customer_id = ?", customer).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *repo) CustomersOfSeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) ([]identitydomain.User, error) {
	var users []identitydomain.User
	err := db.WithContext(ctx).
		Model(&identitydomain.User{}).
		Joins("JOIN quotes ON quotes.customer_id = users.id").
		Where("quotes.seller_id = ?", seller).
		Group("users.id").
		Order("users.name ASC").
		Find(&users).Error
	return users, err
}

func (r *repo) QuotesForPair(ctx context.Context, db *gorm.DB, seller, customer snowflake.ID) ([]quotedomain.Quote, error) {
	var quotes []quotedomain.Quote
	err := db.WithContext(ctx).
		Preload("Lines").
		Where("seller_id = ? AND customer_id = ?", seller, customer).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (r *repo) SubscriptionsForPair(ctx context.Context, db *gorm.DB, seller, customer snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	var subs []subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Preload("Entitlements").
		Joins("JOIN quotes ON quotes.id = subscriptions.quote_id").
		Where("quotes.seller_id = ? AND subscriptions.customer_id = ?", seller, customer).
		Order("subscriptions.created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *repo) LastMessagesForPair(ctx context.Context, db *gorm.DB, customer, seller snowflake.ID, limit int) ([]chatdomain.ChatMessage, error) {
	var messages []chatdomain.ChatMessage
	err := db.WithContext(ctx).
		Where("customer_id = ? AND seller_id = ?", customer, seller).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Query walks newest first so the LIMIT keeps the tail; flip back to
	// reading order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
