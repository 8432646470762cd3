package repository

import (
	"context"
	"errors"

	"github.com/corporateguard/backend/models"
	"gorm.io/gorm"
)

// TermsAcceptanceRepositoryImpl implements the TermsAcceptanceRepository interface
type TermsAcceptanceRepositoryImpl struct {
	*BaseRepository[models.TermsAcceptance, models.TermsAcceptanceFilter]
}

// NewTermsAcceptanceRepository creates a new terms acceptance repository
func NewTermsAcceptanceRepository(db *gorm.DB) TermsAcceptanceRepository {
	return &TermsAcceptanceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.TermsAcceptance, models.TermsAcceptanceFilter](db),
	}
}

// LatestByCompany retrieves the company's most recent terms acceptance
func (r *TermsAcceptanceRepositoryImpl) LatestByCompany(ctx context.Context, companyID uint) (*models.TermsAcceptance, error) {
	db := r.getDB(ctx)

	var acceptance models.TermsAcceptance
	err := db.Where("company_id = ?", companyID).
		Order("accepted_at DESC").
		First(&acceptance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &acceptance, nil
}

// DeleteByCompany removes all of a company's terms acceptances. Used when an
// admin revokes approval so the company must accept terms again.
func (r *TermsAcceptanceRepositoryImpl) DeleteByCompany(ctx context.Context, companyID uint) error {
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

	err = db.Where("company_id = ?", companyID).
		Delete(&models.TermsAcceptance{}).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves terms acceptances based on filter criteria
func (r *TermsAcceptanceRepositoryImpl) ByFilter(ctx context.Context, filter models.TermsAcceptanceFilter, orderBy string, limit, offset int) ([]*models.TermsAcceptance, error) {
	db := r.getDB(ctx)

	var acceptances []*models.TermsAcceptance
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

	err := query.Find(&acceptances).Error
	if err != nil {
		return nil, err
	}

	return acceptances, nil
}

// Count returns the number of terms acceptances matching the filter
func (r *TermsAcceptanceRepositoryImpl) Count(ctx context.Context, filter models.TermsAcceptanceFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var acceptance models.TermsAcceptance
	query := r.applyFilter(db.Model(&acceptance), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any terms acceptance matching the filter exists
func (r *TermsAcceptanceRepositoryImpl) Exists(ctx context.Context, filter models.TermsAcceptanceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *TermsAcceptanceRepositoryImpl) applyFilter(db *gorm.DB, filter models.TermsAcceptanceFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CompanyID != nil {
		db = db.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Version != nil {
		db = db.Where("version = ?", *filter.Version)
	}

	return db
}
