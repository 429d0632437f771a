package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/inventory"
	"github.com/merchantry/backend/internal/domain/shared"
)

// GormPurchaseBatchRepository implements inventory.PurchaseBatchRepository using GORM
type GormPurchaseBatchRepository struct {
	db *gorm.DB
}

// NewGormPurchaseBatchRepository creates a new GormPurchaseBatchRepository
func NewGormPurchaseBatchRepository(db *gorm.DB) *GormPurchaseBatchRepository {
	return &GormPurchaseBatchRepository{db: db}
}

// Save creates or updates a purchase batch
func (r *GormPurchaseBatchRepository) Save(ctx context.Context, batch *inventory.PurchaseBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveAll persists a set of batches in one transaction
func (r *GormPurchaseBatchRepository) SaveAll(ctx context.Context, batches []*inventory.PurchaseBatch) error {
	if len(batches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, batch := range batches {
			if err := tx.Save(batch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a batch by ID within a tenant
func (r *GormPurchaseBatchRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.PurchaseBatch, error) {
	var batch inventory.PurchaseBatch
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindForProduct returns non-deleted batches for a product (or one of its
// variants when variantID is set) ordered by (InvoiceDate, CreatedAt)
// ascending, the FIFO consumption order.
func (r *GormPurchaseBatchRepository) FindForProduct(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID) ([]inventory.PurchaseBatch, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)
	if variantID != nil {
		query = query.Where("variant_id = ?", variantID)
	} else {
		query = query.Where("variant_id IS NULL")
	}

	var batches []inventory.PurchaseBatch
	if err := query.
		Order("invoice_date ASC, created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindByInvoice returns all batches created from a purchase invoice
func (r *GormPurchaseBatchRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]inventory.PurchaseBatch, error) {
	var batches []inventory.PurchaseBatch
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND purchase_invoice_id = ?", tenantID, invoiceID).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindSoldInPeriod returns batches that had quantity sold during the period,
// including soft-deleted ones, for profit recomputation.
func (r *GormPurchaseBatchRepository) FindSoldInPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]inventory.PurchaseBatch, error) {
	var batches []inventory.PurchaseBatch
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("tenant_id = ? AND quantity_sold > 0 AND updated_at >= ? AND updated_at < ?", tenantID, from, to).
		Order("invoice_date ASC, created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// SoftDelete marks a batch deleted without losing its costing history
func (r *GormPurchaseBatchRepository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&inventory.PurchaseBatch{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPurchaseBatchRepository implements PurchaseBatchRepository
var _ inventory.PurchaseBatchRepository = (*GormPurchaseBatchRepository)(nil)
