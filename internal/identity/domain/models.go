// Package domain contains core types for the identity service.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleCustomer:
		return RoleCustomer, true
	case RoleSeller:
		return RoleSeller, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// ssoPlaceholderDomain marks accounts provisioned from an IdP token that
// carried no email claim.
const ssoPlaceholderDomain = "@sso.local"

// User represents an account on either side of a seller/customer relationship.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	Email        string            `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name         string            `gorm:"column:name;type:text;not null"`
	PasswordHash *string           `gorm:"column:password_hash;type:text"`
	Role         Role              `gorm:"column:role;type:text;not null;index"`
	CompanyName  *string           `gorm:"column:company_name;type:text"`
	SSOSub       *string           `gorm:"column:sso_sub;type:text;uniqueIndex"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// NeedsEmail reports whether the account still carries an SSO placeholder address.
func (u User) NeedsEmail() bool {
	return strings.HasSuffix(u.Email, ssoPlaceholderDomain)
}

// PlaceholderEmail derives the synthetic address for an IdP subject without email.
func PlaceholderEmail(sub string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(sub))
	return sanitized + ssoPlaceholderDomain
}
