package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/quote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func New() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Create(quote).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).Preload("Lines").Where("id = ?", id).First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repo) ListByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := db.WithContext(ctx).
		Preload("Lines").
		Where("customer_id = ?", customer).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (r *repo) ListBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := db.WithContext(ctx).
		Preload("Lines").
		Where("seller_id = ?", seller).
		Order("created_at DESC").
		Find(&quotes).Error
	return quotes, err
}

func (r *repo) CountByYear(ctx context.Context, db *gorm.DB, year int) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("quote_number LIKE ?", fmt.Sprintf("Q-%d-%%", year)).
		Count(&count).Error
	return count, err
}

func (r *repo) TransitionOwned(ctx context.Context, db *gorm.DB, customer, id snowflake.ID, fields map[string]any) (int64, error) {
	tx := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ? AND customer_id = ? AND status = ?", id, customer, domain.StatusSent).
		Updates(fields)
	return tx.RowsAffected, tx.Error
}
