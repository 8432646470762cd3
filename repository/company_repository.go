package repository

import (
	"context"
	"errors"
	"time"

	"github.com/corporateguard/backend/models"
	"github.com/corporateguard/backend/utils"
	"gorm.io/gorm"
)

// CompanyRepositoryImpl implements the CompanyRepository interface
type CompanyRepositoryImpl struct {
	*BaseRepository[models.Company, models.CompanyFilter]
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &CompanyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Company, models.CompanyFilter](db),
	}
}

// ByUUID retrieves a company by UUID
func (r *CompanyRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Company, error) {
	parsedUUID, err := utils.ParseUUID(uuid)
	if err != nil {
		return nil, err
	}

	filter := models.CompanyFilter{UUID: &parsedUUID}
	companies, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, err
	}

	if len(companies) == 0 {
		return nil, nil
	}

	return companies[0], nil
}

// ByTaxNumber retrieves a company by its tax number
func (r *CompanyRepositoryImpl) ByTaxNumber(ctx context.Context, taxNumber string) (*models.Company, error) {
	db := r.getDB(ctx)

	var company models.Company
	err := db.Where("tax_number = ?", taxNumber).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &company, nil
}

// Update updates a company
func (r *CompanyRepositoryImpl) Update(ctx context.Context, company models.Company) error {
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

	// Set updated_at timestamp
	now := utils.UTCNow()
	company.UpdatedAt = &now

	err = db.Save(&company).Error
	if err != nil {
		return err
	}

	return nil
}

// UpdateValidationStatus updates only the validation status of a company
func (r *CompanyRepositoryImpl) UpdateValidationStatus(ctx context.Context, companyID uint, status models.ValidationStatus, approvedAt *time.Time) error {
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

	err = db.Model(&models.Company{}).
		Where("id = ?", companyID).
		Updates(map[string]any{
			"validation_status": status,
			"approved_at":       approvedAt,
			"updated_at":        utils.UTCNow(),
		}).Error
	if err != nil {
		return err
	}

	return nil
}

// ByFilter retrieves companies based on filter criteria
func (r *CompanyRepositoryImpl) ByFilter(ctx context.Context, filter models.CompanyFilter, orderBy string, limit, offset int) ([]*models.Company, error) {
	db := r.getDB(ctx)

	var companies []*models.Company
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

	err := query.Find(&companies).Error
	if err != nil {
		return nil, err
	}

	return companies, nil
}

// Count returns the number of companies matching the filter
func (r *CompanyRepositoryImpl) Count(ctx context.Context, filter models.CompanyFilter) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	var company models.Company
	query := r.applyFilter(db.Model(&company), filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Exists checks if any company matching the filter exists
func (r *CompanyRepositoryImpl) Exists(ctx context.Context, filter models.CompanyFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CompanyRepositoryImpl) applyFilter(db *gorm.DB, filter models.CompanyFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.TaxNumber != nil {
		db = db.Where("tax_number = ?", *filter.TaxNumber)
	}
	if filter.TradeName != nil {
		db = db.Where("trade_name ILIKE ?", "%"+*filter.TradeName+"%")
	}
	if filter.Sector != nil {
		db = db.Where("sector = ?", *filter.Sector)
	}
	if filter.ValidationStatus != nil {
		db = db.Where("validation_status = ?", *filter.ValidationStatus)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}

	return db
}
