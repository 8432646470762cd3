// Package models contains domain entities and business models for the collective purchase system
package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/corporateguard/backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationStatus represents the admin validation state of a company
type ValidationStatus string

const (
	ValidationStatusPending  ValidationStatus = "pending"
	ValidationStatusApproved ValidationStatus = "approved"
	ValidationStatusRejected ValidationStatus = "rejected"
)

// String returns the string representation of the status
func (s ValidationStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ValidationStatus) Valid() bool {
	switch s {
	case ValidationStatusPending, ValidationStatusApproved, ValidationStatusRejected:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ValidationStatus
func (s *ValidationStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ValidationStatus(v)
	case []byte:
		*s = ValidationStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ValidationStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ValidationStatus
func (s ValidationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ValidationStatus: %s", s)
	}
	return string(s), nil
}

// Company represents an organization registered on the platform
type Company struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_companies_uuid" json:"uuid"`

	// Registration fields
	TaxNumber string `gorm:"size:32;not null;uniqueIndex:uk_companies_tax_number" json:"tax_number"`
	TradeName string `gorm:"size:255;not null" json:"trade_name"`
	Sector    string `gorm:"size:128;not null" json:"sector"`

	// Admin validation
	ValidationStatus ValidationStatus `gorm:"type:validation_status;not null;default:'pending';index:idx_companies_validation_status" json:"validation_status"`
	ApprovedAt       *time.Time       `json:"approved_at,omitempty"`

	// Profile fields
	Address     *string `gorm:"size:255" json:"address,omitempty"`
	Phone       *string `gorm:"size:32" json:"phone,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	LogoURL     *string `gorm:"type:text" json:"logo_url,omitempty"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_companies_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Relations
	Users     []User              `gorm:"foreignKey:CompanyID" json:"-"`
	Purchases []CollectivePurchase `gorm:"foreignKey:CompanyID" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

// BeforeCreate is called before creating a new record
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.ValidationStatus == "" {
		c.ValidationStatus = ValidationStatusPending
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsApproved reports whether the company has passed admin validation
func (c *Company) IsApproved() bool {
	return c.ValidationStatus == ValidationStatusApproved
}

// CompanyFilter represents filter criteria for company queries
type CompanyFilter struct {
	ID               *uint
	UUID             *uuid.UUID
	TaxNumber        *string
	TradeName        *string
	Sector           *string
	ValidationStatus *ValidationStatus
	CreatedAfter     *time.Time
	CreatedBefore    *time.Time
}
