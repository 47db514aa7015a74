package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tvnrapp/relationship-os/internal/invite/domain"
	"gorm.io/gorm"
)

type repo struct{}

func New() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, invite *domain.Invite) error {
	return db.WithContext(ctx).Create(invite).Error
}

func (r *repo) FindByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*domain.Invite, error) {
	var invite domain.Invite
	err := db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *repo) ListPending(ctx context.Context, db *gorm.DB, issuer snowflake.ID, now time.Time) ([]domain.Invite, error) {
	var invites []domain.Invite
	err := db.WithContext(ctx).
		Where("created_by_user_id = ? AND accepted_at IS NULL AND expires_at > ?", issuer, now).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

func (r *repo) DeletePending(ctx context.Context, db *gorm.DB, issuer snowflake.ID, email string, now time.Time) error {
	return db.WithContext(ctx).
		Where("created_by_user_id = ? AND email = ? AND accepted_at IS NULL AND expires_at > ?", issuer, email, now).
		Delete(&domain.Invite{}).Error
}

func (r *repo) MarkAccepted(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	tx := db.WithContext(ctx).
		Model(&domain.Invite{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Updates(map[string]any{"accepted_at": now, "updated_at": now})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrInviteAlreadyUsed
	}
	return nil
}
