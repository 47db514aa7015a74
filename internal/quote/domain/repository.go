package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository persists quotes and their lines. Methods accept a db handle so
// callers can run inside an existing transaction.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	ListByCustomer(ctx context.Context, db *gorm.DB, customer snowflake.ID) ([]Quote, error)
	ListBySeller(ctx context.Context, db *gorm.DB, seller snowflake.ID) ([]Quote, error)
	// CountByYear counts quotes numbered within the given year, used for
	// sequential number assignment.
	CountByYear(ctx context.Context, db *gorm.DB, year int) (int64, error)
	// TransitionOwned moves the quote out of SENT only when it belongs to the
	// customer. Reports affected rows so callers can distinguish a lost race.
	TransitionOwned(ctx context.Context, db *gorm.DB, customer, id snowflake.ID, fields map[string]any) (int64, error)
}
