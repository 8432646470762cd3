// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/corporateguard/backend/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CompanyRepository defines operations for companies
type CompanyRepository interface {
	Repository[models.Company, models.CompanyFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Company, error)
	ByTaxNumber(ctx context.Context, taxNumber string) (*models.Company, error)
	Update(ctx context.Context, company models.Company) error
	UpdateValidationStatus(ctx context.Context, companyID uint, status models.ValidationStatus, approvedAt *time.Time) error
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// PurchaseRepository defines operations for collective purchases
type PurchaseRepository interface {
	Repository[models.CollectivePurchase, models.CollectivePurchaseFilter]
	ByUUID(ctx context.Context, uuid string) (*models.CollectivePurchase, error)
	// ByUUIDForUpdate locks the purchase row until the surrounding transaction
	// ends. Callers must run inside WithTransaction.
	ByUUIDForUpdate(ctx context.Context, uuid string) (*models.CollectivePurchase, error)
	Close(ctx context.Context, purchaseID uint, closedAt time.Time) error
	ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.CollectivePurchase, error)
	ListOpenExcludingCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.CollectivePurchase, error)
}

// ParticipantRepository defines operations for purchase participants
type ParticipantRepository interface {
	Repository[models.PurchaseParticipant, models.ParticipantFilter]
	// SumConfirmedQuantity totals CONFIRMED quantities for a purchase. Inside a
	// transaction holding the purchase row lock the result is stable.
	SumConfirmedQuantity(ctx context.Context, purchaseID uint) (int64, error)
	SumConfirmedQuantities(ctx context.Context, purchaseIDs []uint) (map[uint]int64, error)
	ConfirmedByPurchaseAndCompany(ctx context.Context, purchaseID, companyID uint) (*models.PurchaseParticipant, error)
	// CancelConfirmed flips the company's CONFIRMED row to CANCELLED and
	// returns the number of rows affected (0 when no active row exists).
	CancelConfirmed(ctx context.Context, purchaseID, companyID uint) (int64, error)
	ListConfirmedByPurchase(ctx context.Context, purchaseID uint) ([]*models.PurchaseParticipant, error)
	ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.PurchaseParticipant, error)
	CountByCompanyAndStatus(ctx context.Context, companyID uint, status models.ParticipationStatus) (int64, error)
}

// ReputationLogRepository defines operations for reputation logs
type ReputationLogRepository interface {
	Repository[models.ReputationLog, models.ReputationLogFilter]
	ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.ReputationLog, error)
}

// TermsAcceptanceRepository defines operations for terms acceptances
type TermsAcceptanceRepository interface {
	Repository[models.TermsAcceptance, models.TermsAcceptanceFilter]
	LatestByCompany(ctx context.Context, companyID uint) (*models.TermsAcceptance, error)
	DeleteByCompany(ctx context.Context, companyID uint) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
