package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/corporateguard/backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseStatus represents the lifecycle state of a collective purchase
type PurchaseStatus string

const (
	PurchaseStatusOpen   PurchaseStatus = "OPEN"
	PurchaseStatusClosed PurchaseStatus = "CLOSED"
)

// String returns the string representation of the status
func (s PurchaseStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusOpen, PurchaseStatusClosed:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for PurchaseStatus
func (s *PurchaseStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = PurchaseStatus(v)
	case []byte:
		*s = PurchaseStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into PurchaseStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for PurchaseStatus
func (s PurchaseStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid PurchaseStatus: %s", s)
	}
	return string(s), nil
}

// CollectivePurchase represents a joint purchase proposal with a numeric target.
// Once the sum of confirmed participant quantities reaches TargetQuantity the
// purchase closes and never reopens.
type CollectivePurchase struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_collective_purchases_uuid" json:"uuid"`

	CompanyID       uint `gorm:"not null;index:idx_collective_purchases_company_id" json:"company_id"`
	CreatedByUserID uint `gorm:"not null" json:"created_by_user_id"`

	ProductName    string `gorm:"size:255;not null" json:"product_name"`
	Description    string `gorm:"type:text;not null" json:"description"`
	TargetQuantity int64  `gorm:"not null" json:"target_quantity"`

	Status   PurchaseStatus `gorm:"type:purchase_status;not null;default:'OPEN';index:idx_collective_purchases_status" json:"status"`
	ClosedAt *time.Time     `json:"closed_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_collective_purchases_created_at" json:"created_at"`

	// Relations
	Company      *Company              `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	CreatedBy    *User                 `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by,omitempty"`
	Participants []PurchaseParticipant `gorm:"foreignKey:PurchaseID" json:"participants,omitempty"`
}

func (CollectivePurchase) TableName() string {
	return "collective_purchases"
}

// BeforeCreate is called before creating a new record
func (p *CollectivePurchase) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == uuid.Nil {
		p.UUID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PurchaseStatusOpen
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsOpen reports whether the purchase still accepts participants
func (p *CollectivePurchase) IsOpen() bool {
	return p.Status == PurchaseStatusOpen
}

// CanTransitionTo checks if the purchase can transition to the given status.
// OPEN -> CLOSED is the only legal transition; CLOSED is terminal.
func (p *CollectivePurchase) CanTransitionTo(newStatus PurchaseStatus) bool {
	return p.Status == PurchaseStatusOpen && newStatus == PurchaseStatusClosed
}

// RemainingQuantity computes the unfilled capacity given the confirmed total.
// Never negative, even if the confirmed total equals the target exactly.
func (p *CollectivePurchase) RemainingQuantity(totalConfirmed int64) int64 {
	remaining := p.TargetQuantity - totalConfirmed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CollectivePurchaseFilter represents filter criteria for purchase queries
type CollectivePurchaseFilter struct {
	ID               *uint
	UUID             *uuid.UUID
	CompanyID        *uint
	ExcludeCompanyID *uint
	CreatedByUserID  *uint
	Status           *PurchaseStatus
	ProductName      *string
	CreatedAfter     *time.Time
	CreatedBefore    *time.Time
}
