package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists invites. Methods accept a db handle so callers can run
// inside an existing transaction.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, invite *Invite) error
	FindByTokenHash(ctx context.Context, db *gorm.DB, tokenHash string) (*Invite, error)
	ListPending(ctx context.Context, db *gorm.DB, issuer snowflake.ID, now time.Time) ([]Invite, error)
	DeletePending(ctx context.Context, db *gorm.DB, issuer snowflake.ID, email string, now time.Time) error
	// MarkAccepted stamps acceptedAt exactly once; a second call for the same
	// invite reports ErrInviteAlreadyUsed.
	MarkAccepted(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error
}
