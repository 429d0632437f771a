package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/shared"
)

// GormCompanyRepository implements logistics.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Save creates or updates a logistics company together with its fee table.
// The bracket list is replaced wholesale so removed brackets do not linger.
func (r *GormCompanyRepository) Save(ctx context.Context, company *logistics.LogisticsCompany) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(company).Error; err != nil {
			return err
		}

		currentRangeIDs := make([]uuid.UUID, len(company.FeeRanges))
		for i, feeRange := range company.FeeRanges {
			currentRangeIDs[i] = feeRange.ID
		}

		if len(currentRangeIDs) > 0 {
			if err := tx.Where("company_id = ? AND id NOT IN ?", company.ID, currentRangeIDs).
				Delete(&logistics.CodFeeRange{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("company_id = ?", company.ID).
				Delete(&logistics.CodFeeRange{}).Error; err != nil {
				return err
			}
		}

		for i := range company.FeeRanges {
			company.FeeRanges[i].CompanyID = company.ID
			company.FeeRanges[i].TenantID = company.TenantID
			if err := tx.Save(&company.FeeRanges[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a logistics company by ID within a tenant
func (r *GormCompanyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*logistics.LogisticsCompany, error) {
	var company logistics.LogisticsCompany
	if err := r.db.WithContext(ctx).
		Preload("FeeRanges").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// FindAll returns logistics companies for a tenant, optionally active only
func (r *GormCompanyRepository) FindAll(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]*logistics.LogisticsCompany, error) {
	var companies []*logistics.LogisticsCompany
	query := r.db.WithContext(ctx).
		Preload("FeeRanges").
		Where("tenant_id = ?", tenantID).
		Order("name ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// Ensure GormCompanyRepository implements CompanyRepository
var _ logistics.CompanyRepository = (*GormCompanyRepository)(nil)
