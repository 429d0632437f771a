package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/customer"
	"github.com/merchantry/backend/internal/domain/shared"
)

// GormCustomerRepository implements customer.Repository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// SaveWithLock persists the customer with an optimistic version check.
// Advance balance mutations go through here so two concurrent draws
// cannot both succeed against the same version.
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, c *customer.Customer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&customer.Customer{}).
			Where("tenant_id = ? AND id = ?", c.TenantID, c.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != c.Version {
			return shared.ErrConcurrentModification
		}

		c.Version++
		c.UpdatedAt = time.Now()

		result := tx.Model(&customer.Customer{}).
			Where("tenant_id = ? AND id = ? AND version = ?", c.TenantID, c.ID, currentVersion).
			Updates(map[string]interface{}{
				"name":            c.Name,
				"phone":           c.Phone,
				"address":         c.Address,
				"advance_balance": c.AdvanceBalance,
				"version":         c.Version,
				"updated_at":      c.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrentModification
		}
		return nil
	})
}

// FindByID finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByPhone finds a customer by phone number within a tenant
func (r *GormCustomerRepository) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ?", tenantID, phone).
		First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Ensure GormCustomerRepository implements customer.Repository
var _ customer.Repository = (*GormCustomerRepository)(nil)
