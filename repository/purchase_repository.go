package repository

import (
	"context"
	"errors"
	"time"

	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PurchaseRepositoryImpl implements the PurchaseRepository interface
type PurchaseRepositoryImpl struct {
	*BaseRepository[models.CollectivePurchase, models.CollectivePurchaseFilter]
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &PurchaseRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CollectivePurchase, models.CollectivePurchaseFilter](db),
	}
}

// ByUUID retrieves a purchase by UUID
func (r *PurchaseRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.CollectivePurchase, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CollectivePurchaseFilter{UUID: &parsedUUID}
	purchases, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(purchases) == 0 {
		return nil, nil
	}

	return purchases[0], nil
}

// ByUUIDForUpdate retrieves a purchase by UUID with a SELECT ... FOR UPDATE
// row lock. The lock serializes joins, cancellations, and the close decision
// for one purchase until the surrounding transaction commits or rolls back.
func (r *PurchaseRepositoryImpl) ByUUIDForUpdate(ctx context.Context, uuid string) (*models.CollectivePurchase, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	db := r.getDB(ctx)

	var purchase models.CollectivePurchase
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("uuid = ?", parsedUUID).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &purchase, nil
}

// Close transitions a purchase to CLOSED with the given close timestamp.
// CLOSED is terminal; callers decide eligibility under the row lock.
func (r *PurchaseRepositoryImpl) Close(ctx context.Context, purchaseID uint, closedAt time.Time) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Model(&models.CollectivePurchase{}).
		Where("id = ? AND status = ?", purchaseID, models.PurchaseStatusOpen).
		Updates(map[string]any{
			"status":    models.PurchaseStatusClosed,
			"closed_at": closedAt,
		}).Error
	if err != nil {
		return err
	}

	return nil
}

// ListByCompany retrieves purchases proposed by a company, newest first,
// with participants embedded
func (r *PurchaseRepositoryImpl) ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.CollectivePurchase, error) {
	filter := models.CollectivePurchaseFilter{CompanyID: &companyID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// ListOpenExcludingCompany retrieves OPEN purchases proposed by other
// companies, newest first. This is the marketplace view.
func (r *PurchaseRepositoryImpl) ListOpenExcludingCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.CollectivePurchase, error) {
	status := models.PurchaseStatusOpen
	filter := models.CollectivePurchaseFilter{
		Status:           &status,
		ExcludeCompanyID: &companyID,
	}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// ByFilter retrieves purchases based on filter criteria
func (r *PurchaseRepositoryImpl) ByFilter(ctx context.Context, filter models.CollectivePurchaseFilter, orderBy string, limit, offset int) ([]*models.CollectivePurchase, error) {
	db := r.getDB(ctx)

	var purchases []*models.CollectivePurchase
	query := r.applyFilter(db, filter)

	// Apply ordering
	if orderBy != "" {
		query = query.Order(orderBy)
	}

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	// Preload relationships
	query = query.Preload("Company").
		Preload("Participants")

	err := query.Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	return purchases, nil
}

// Count returns the number of purchases matching the filter
func (r *PurchaseRepositoryImpl) Count(ctx context.Context, filter models.CollectivePurchaseFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var purchase models.CollectivePurchase
	query := r.applyFilter(db.Model(&purchase), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any purchase matching the filter exists
func (r *PurchaseRepositoryImpl) Exists(ctx context.Context, filter models.CollectivePurchaseFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *PurchaseRepositoryImpl) applyFilter(db *gorm.DB, filter models.CollectivePurchaseFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.ExcludeCompanyID != nil {
		db = db.Where("company_id <> ?", *filter.ExcludeCompanyID)
	}
	if filter.CreatedByUserID != nil {
		db = db.Where("created_by_user_id = ?", *filter.CreatedByUserID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.ProductName != nil {
		db = db.Where("product_name ILIKE ?", "%"+*filter.ProductName+"%")
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
