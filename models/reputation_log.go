package models

import (
	"time"

	"github.com/corporateguard/backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reputation event type constants
const (
	ReputationEventCancelledAfterConfirm = "cancelled_after_confirm"
)

// ReputationLog is an append-only record of reputation-affecting behavior.
// Rows are never updated or deleted; the score is derived at read time from
// participation counts, so these rows serve as the behavioral history only.
type ReputationLog struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_reputation_logs_uuid" json:"uuid"`

	CompanyID  uint  `gorm:"not null;index:idx_reputation_logs_company_id" json:"company_id"`
	UserID     uint  `gorm:"not null;index:idx_reputation_logs_user_id" json:"user_id"`
	PurchaseID *uint `gorm:"index:idx_reputation_logs_purchase_id" json:"purchase_id,omitempty"`

	EventType string  `gorm:"size:64;not null;index:idx_reputation_logs_event_type" json:"event_type"`
	Details   *string `gorm:"type:text" json:"details,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_reputation_logs_created_at" json:"created_at"`

	// Relations
	Company  *Company            `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	User     *User               `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Purchase *CollectivePurchase `gorm:"foreignKey:PurchaseID;references:ID" json:"purchase,omitempty"`
}

func (ReputationLog) TableName() string {
	return "reputation_logs"
}

// BeforeCreate is called before creating a new record
func (r *ReputationLog) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = utils.UTCNow()
	}
	return nil
}

// ReputationLogFilter represents filter criteria for reputation log queries
type ReputationLogFilter struct {
	ID            *uint
	CompanyID     *uint
	UserID        *uint
	PurchaseID    *uint
	EventType     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
