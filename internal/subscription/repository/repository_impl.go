package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func New() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Omit("Entitlements").Create(sub).Error
}

func (r *repo) CreateEntitlements(ctx context.Context, db *gorm.DB, ents []domain.Entitlement) error {
	if len(ents) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&ents).Error
}

func (r *repo) FindOwned(ctx context.Context, db *gorm.DB, customer, id snowflake.ID) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).
		Preload("Entitlements").
		Where("id = ? AND customer_id = ?", id, customer).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	err := db.WithContext(ctx).
		Preload("Entitlements").
		Where("customer_id = ?", customer).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *repo) ListBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	err := db.WithContext(ctx).
		Preload("Entitlements").
		Joins("JOIN quotes ON quotes.id = subscriptions.quote_id").
		Where("quotes.seller_id = ?", seller).
		Order("subscriptions.created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *repo) UpdateStateOwned(ctx context.Context, db *gorm.DB, customer, id snowflake.ID, from []domain.Status, fields map[string]any) (int64, error) {
	tx := db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ? AND customer_id = ? AND status IN ?", id, customer, from).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}
