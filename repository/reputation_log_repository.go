package repository

import (
	"context"

	"github.com/corporateguard/backend/models"
	"gorm.io/gorm"
)

// ReputationLogRepositoryImpl implements the ReputationLogRepository interface
type ReputationLogRepositoryImpl struct {
	*BaseRepository[models.ReputationLog, models.ReputationLogFilter]
}

// NewReputationLogRepository creates a new reputation log repository
func NewReputationLogRepository(db *gorm.DB) ReputationLogRepository {
	return &ReputationLogRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ReputationLog, models.ReputationLogFilter](db),
	}
}

// ListByCompany retrieves a company's reputation events, newest first
func (r *ReputationLogRepositoryImpl) ListByCompany(ctx context.Context, companyID uint, limit, offset int) ([]*models.ReputationLog, error) {
	filter := models.ReputationLogFilter{CompanyID: &companyID}
	return r.ByFilter(ctx, filter, "created_at DESC", limit, offset)
}

// ByFilter retrieves reputation logs based on filter criteria
func (r *ReputationLogRepositoryImpl) ByFilter(ctx context.Context, filter models.ReputationLogFilter, orderBy string, limit, offset int) ([]*models.ReputationLog, error) {
	db := r.getDB(ctx)

	var logs []*models.ReputationLog
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
	query = query.Preload("Purchase")

	err := query.Find(&logs).Error
	if err != nil {
		return nil, err
	}

	return logs, nil
}

// Count returns the number of reputation logs matching the filter
func (r *ReputationLogRepositoryImpl) Count(ctx context.Context, filter models.ReputationLogFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var log models.ReputationLog
	query := r.applyFilter(db.Model(&log), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any reputation log matching the filter exists
func (r *ReputationLogRepositoryImpl) Exists(ctx context.Context, filter models.ReputationLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ReputationLogRepositoryImpl) applyFilter(db *gorm.DB, filter models.ReputationLogFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.PurchaseID != nil {
		db = db.Where("purchase_id = ?", *filter.PurchaseID)
	}
	if filter.EventType != nil {
		db = db.Where("event_type = ?", *filter.EventType)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
