// Package domain contains core types for the invite workflow.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	identity "github.com/tvnrapp/relationship-os/internal/identity/domain"
)

// Invite binds an email, role and company to a future account. Only the
// token hash is stored; the raw token is returned once at creation.
type Invite struct {
	ID          snowflake.ID  `gorm:"primaryKey"`
	Email       string        `gorm:"column:email;type:text;not null;index"`
	Role        identity.Role `gorm:"column:role;type:text;not null"`
	CompanyName *string       `gorm:"column:company_name;type:text"`
	TokenHash   string        `gorm:"column:token_hash;type:text;not null;uniqueIndex"`
	ExpiresAt   time.Time     `gorm:"column:expires_at;not null;index"`
	AcceptedAt  *time.Time    `gorm:"column:accepted_at"`
	CreatedBy   snowflake.ID  `gorm:"column:created_by_user_id;not null;index"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invite) TableName() string { return "invites" }

// Pending reports whether the invite can still be accepted at the given instant.
func (i Invite) Pending(now time.Time) bool {
	return i.AcceptedAt == nil && i.ExpiresAt.After(now)
}
