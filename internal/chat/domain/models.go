// Package domain contains core types for conversations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ChatMessage is append-only; messages are never edited or deleted. The
// customer/seller pair identifies the conversation regardless of sender.
type ChatMessage struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	SenderID   snowflake.ID `gorm:"column:sender_id;not null"`
	CustomerID snowflake.ID `gorm:"column:customer_id;not null;index:idx_chat_pair"`
	SellerID   snowflake.ID `gorm:"column:seller_id;not null;index:idx_chat_pair"`
	Content    string       `gorm:"column:content;type:text;not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName sets the database table name.
func (ChatMessage) TableName() string { return "chat_messages" }
