package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/corporateguard/backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParticipationStatus represents the state of one company's commitment
type ParticipationStatus string

const (
	ParticipationStatusConfirmed ParticipationStatus = "CONFIRMED"
	ParticipationStatusCancelled ParticipationStatus = "CANCELLED"
)

// String returns the string representation of the status
func (s ParticipationStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s ParticipationStatus) Valid() bool {
	switch s {
	case ParticipationStatusConfirmed, ParticipationStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for ParticipationStatus
func (s *ParticipationStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = ParticipationStatus(v)
	case []byte:
		*s = ParticipationStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into ParticipationStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for ParticipationStatus
func (s ParticipationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid ParticipationStatus: %s", s)
	}
	return string(s), nil
}

// PurchaseParticipant represents one company's quantity commitment toward a
// collective purchase. Quantity may have been clamped below the requested
// amount to fit remaining capacity. The signature fields are caller-supplied
// attestation metadata and are not cryptographically verified.
//
// A partial unique index on (purchase_id, company_id) WHERE status = 'CONFIRMED'
// guarantees at most one active commitment per company per purchase. Cancelled
// rows are retained for history and never deleted.
type PurchaseParticipant struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_purchase_participants_uuid" json:"uuid"`

	PurchaseID uint `gorm:"not null;index:idx_purchase_participants_purchase_id" json:"purchase_id"`
	CompanyID  uint `gorm:"not null;index:idx_purchase_participants_company_id" json:"company_id"`
	UserID     uint `gorm:"not null" json:"user_id"`

	Quantity int64 `gorm:"not null" json:"quantity"`

	SignatureID      string `gorm:"size:255;not null" json:"signature_id"`
	SignatureName    string `gorm:"size:255;not null" json:"signature_name"`
	SignatureContact string `gorm:"size:255;not null" json:"signature_contact"`

	Status ParticipationStatus `gorm:"type:participation_status;not null;default:'CONFIRMED';index:idx_purchase_participants_status" json:"status"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_purchase_participants_created_at" json:"created_at"`

	// Relations
	Purchase *CollectivePurchase `gorm:"foreignKey:PurchaseID;references:ID" json:"purchase,omitempty"`
	Company  *Company            `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
}

func (PurchaseParticipant) TableName() string {
	return "purchase_participants"
}

// BeforeCreate is called before creating a new record
func (pp *PurchaseParticipant) BeforeCreate(tx *gorm.DB) error {
	if pp.UUID == uuid.Nil {
		pp.UUID = uuid.New()
	}
	if pp.Status == "" {
		pp.Status = ParticipationStatusConfirmed
	}
	if pp.CreatedAt.IsZero() {
		pp.CreatedAt = utils.UTCNow()
	}
	return nil
}

// IsConfirmed reports whether the commitment still counts toward capacity
func (pp *PurchaseParticipant) IsConfirmed() bool {
	return pp.Status == ParticipationStatusConfirmed
}

// ParticipantFilter represents filter criteria for participant queries
type ParticipantFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	PurchaseID *uint
	CompanyID  *uint
	UserID     *uint
	Status     *ParticipationStatus
}
