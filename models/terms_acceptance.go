package models

import (
	"time"

	"github.com/corporateguard/backend/utils"
	"gorm.io/gorm"
)

// TermsAcceptance records a company's acceptance of a terms version.
// Revoking a company's approval deletes its acceptances, forcing a fresh
// acceptance after re-approval.
type TermsAcceptance struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CompanyID uint   `gorm:"not null;uniqueIndex:uk_terms_acceptances_company_version,priority:1" json:"company_id"`
	UserID    uint   `gorm:"not null" json:"user_id"`
	Version   string `gorm:"size:32;not null;uniqueIndex:uk_terms_acceptances_company_version,priority:2" json:"version"`

	AcceptedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"accepted_at"`

	// Relations
	Company *Company `gorm:"foreignKey:CompanyID;references:ID" json:"company,omitempty"`
	User    *User    `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (TermsAcceptance) TableName() string {
	return "terms_acceptances"
}

// BeforeCreate is called before creating a new record
func (t *TermsAcceptance) BeforeCreate(tx *gorm.DB) error {
	if t.AcceptedAt.IsZero() {
		t.AcceptedAt = utils.UTCNow()
	}
	return nil
}

// TermsAcceptanceFilter represents filter criteria for terms acceptance queries
type TermsAcceptanceFilter struct {
	ID        *uint
	CompanyID *uint
	UserID    *uint
	Version   *string
}
