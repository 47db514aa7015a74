package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/chat/domain"
	"github.com/tvnrapp/relationship-os/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func New() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, msg *domain.ChatMessage) error {
	return db.WithContext(ctx).Create(msg).Error
}

func (r *repo) ListPair(ctx context.Context, db *gorm.DB, customer, seller snowflake.ID, after *pagination.Cursor, limit int) ([]domain.ChatMessage, error) {
	stmt := db.WithContext(ctx).
		Where("customer_id = ? AND seller_id = ?", customer, seller).
		Order("created_at ASC, id ASC")
	if after != nil && after.ID != "" {
		if id, err := snowflake.ParseString(after.ID); err == nil {
			stmt = stmt.Where("id > ?", id)
		}
	}
	if limit > 0 {
		// One extra row tells the caller whether more pages exist.
		stmt = stmt.Limit(limit + 1)
	}

	var messages []domain.ChatMessage
	err := stmt.Find(&messages).Error
	return messages, err
}
