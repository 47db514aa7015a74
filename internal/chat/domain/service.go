package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	identity "github.com/tvnrapp/relationship-os/internal/identity/domain"
	"github.com/tvnrapp/relationship-os/pkg/db/pagination"
	"gorm.io/gorm"
)

// Page is one cursor page of a conversation.
type Page struct {
	Messages []ChatMessage
	PageInfo *pagination.PageInfo
}

// Repository persists chat messages.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, msg *ChatMessage) error
	// ListPair returns messages for a conversation in ascending creation
	// order, starting after the cursor when one is given.
	ListPair(ctx context.Context, db *gorm.DB, customer, seller snowflake.ID, after *pagination.Cursor, limit int) ([]ChatMessage, error)
}

// Service implements the conversation between a customer and a seller.
type Service interface {
	List(ctx context.Context, caller *identity.User, other snowflake.ID, page pagination.Pagination) (*Page, error)
	Send(ctx context.Context, caller *identity.User, other snowflake.ID, content string) (*ChatMessage, error)
}
