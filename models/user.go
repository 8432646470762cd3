package models

import (
	"time"

	"github.com/corporateguard/backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User role constants
const (
	UserRoleAdmin  = "admin"
	UserRoleMember = "member"
)

// User represents a person acting on behalf of a company
type User struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`

	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	Role         string `gorm:"size:16;not null;default:'member'" json:"role"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	CompanyID uint     `gorm:"not null;index:idx_users_company_id" json:"company_id"`
	Company   *Company `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate is called before creating a new record
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.Role == "" {
		u.Role = UserRoleMember
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsAdmin reports whether the user can manage their company
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID        *uint
	UUID      *uuid.UUID
	Email     *string
	CompanyID *uint
	Role      *string
}
