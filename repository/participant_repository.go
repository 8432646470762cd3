package repository

import (
	"context"
	"errors"

	"github.com/corporateguard/backend/models"
	"gorm.io/gorm"
)

// ParticipantRepositoryImpl implements the ParticipantRepository interface
type ParticipantRepositoryImpl struct {
	*BaseRepository[models.PurchaseParticipant, models.ParticipantFilter]
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &ParticipantRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PurchaseParticipant, models.ParticipantFilter](db),
	}
}

// SumConfirmedQuantity totals the CONFIRMED quantities for a purchase
func (r *ParticipantRepositoryImpl) SumConfirmedQuantity(ctx context.Context, purchaseID uint) (int64, error) {
	db := r.getDB(ctx)

	var total int64
	err := db.Model(&models.PurchaseParticipant{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("purchase_id = ? AND status = ?", purchaseID, models.ParticipationStatusConfirmed).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

// SumConfirmedQuantities returns a map of purchase_id -> confirmed quantity total
func (r *ParticipantRepositoryImpl) SumConfirmedQuantities(ctx context.Context, purchaseIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64)
	if len(purchaseIDs) == 0 {
		return out, nil
	}

	type row struct {
		PurchaseID uint
		Total      int64
	}
	var rows []row
	db := r.getDB(ctx)
	if err := db.Model(&models.PurchaseParticipant{}).
		Select("purchase_id, COALESCE(SUM(quantity), 0) AS total").
		Where("purchase_id IN ? AND status = ?", purchaseIDs, models.ParticipationStatusConfirmed).
		Group("purchase_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.PurchaseID] = r.Total
	}
	return out, nil
}

// ConfirmedByPurchaseAndCompany retrieves the company's active commitment on
// a purchase, or nil when the company holds none
func (r *ParticipantRepositoryImpl) ConfirmedByPurchaseAndCompany(ctx context.Context, purchaseID, companyID uint) (*models.PurchaseParticipant, error) {
	db := r.getDB(ctx)

	var participant models.PurchaseParticipant
	err := db.Where("purchase_id = ? AND company_id = ? AND status = ?",
		purchaseID, companyID, models.ParticipationStatusConfirmed).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &participant, nil
}

// CancelConfirmed flips the company's CONFIRMED row on a purchase to
// CANCELLED and reports the number of rows affected. The cancelled row stays
// in place for history; only its status changes.
func (r *ParticipantRepositoryImpl) CancelConfirmed(ctx context.Context, purchaseID, companyID uint) (int64, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
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

	result := db.Model(&models.PurchaseParticipant{}).
		Where("purchase_id = ? AND company_id = ? AND status = ?",
			purchaseID, companyID, models.ParticipationStatusConfirmed).
		Update("status", models.ParticipationStatusCancelled)
	if result.Error != nil {
		err = result.Error
		return 0, err
	}

	return result.RowsAffected, nil
}

// ListConfirmedByPurchase retrieves the CONFIRMED participants of a purchase
// in participation order (oldest first), with company details embedded.
// This ordering is what final documents present.
func (r *ParticipantRepositoryImpl) ListConfirmedByPurchase(ctx context.Context, purchaseID uint) ([]*models.PurchaseParticipant, error) {
	status := models.ParticipationStatusConfirmed
	filter := models.ParticipantFilter{
		PurchaseID: &purchaseID,
		Status:     &status,
	}
	return r.ByFilter(ctx, filter, "created_at ASC", 0, 0)
}

// ListByCompany retrieves all of a company's participations (including
// cancelled ones), newest first, with the purchase embedded
func (r *ParticipantRepositoryImpl) ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.PurchaseParticipant, error) {
	filter := models.ParticipantFilter{CompanyID: &companyID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// CountByCompanyAndStatus counts a company's participations in the given status
func (r *ParticipantRepositoryImpl) CountByCompanyAndStatus(ctx context.Context, companyID uint, status models.ParticipationStatus) (int64, error) {
	filter := models.ParticipantFilter{
		CompanyID: &companyID,
		Status:    &status,
	}
	return r.Count(ctx, filter)
}

// ByFilter retrieves participants based on filter criteria
func (r *ParticipantRepositoryImpl) ByFilter(ctx context.Context, filter models.ParticipantFilter, orderBy string, limit, offset int) ([]*models.PurchaseParticipant, error) {
	db := r.getDB(ctx)

	var participants []*models.PurchaseParticipant
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
	query = query.Preload("Purchase").
		Preload("Company")

	err := query.Find(&participants).Error
	if err != nil {
		return nil, err
	}

	return participants, nil
}

// Count returns the number of participants matching the filter
func (r *ParticipantRepositoryImpl) Count(ctx context.Context, filter models.ParticipantFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var participant models.PurchaseParticipant
	query := r.applyFilter(db.Model(&participant), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any participant matching the filter exists
func (r *ParticipantRepositoryImpl) Exists(ctx context.Context, filter models.ParticipantFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ParticipantRepositoryImpl) applyFilter(db *gorm.DB, filter models.ParticipantFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.PurchaseID != nil {
		db = db.Where("purchase_id = ?", *filter.PurchaseID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}

	return db
}
