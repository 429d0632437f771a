package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/purchase"
	"github.com/merchantry/backend/internal/domain/shared"
)

// GormInvoiceRepository implements purchase.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save creates or updates a purchase invoice together with its items.
// A duplicate invoice number within the tenant surfaces as
// shared.ErrAlreadyExists.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *purchase.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrAlreadyExists
			}
			return err
		}
		return saveInvoiceItems(tx, invoice)
	})
}

// SaveWithLock persists the invoice with an optimistic version check
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *purchase.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&purchase.Invoice{}).
			Where("tenant_id = ? AND id = ?", invoice.TenantID, invoice.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != invoice.Version {
			return shared.ErrConcurrentModification
		}

		invoice.Version++
		invoice.UpdatedAt = time.Now()

		result := tx.Model(&purchase.Invoice{}).
			Where("tenant_id = ? AND id = ? AND version = ?", invoice.TenantID, invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"invoice_number":  invoice.InvoiceNumber,
				"supplier_name":   invoice.SupplierName,
				"invoice_date":    invoice.InvoiceDate,
				"total_amount":    invoice.TotalAmount,
				"returned_amount": invoice.ReturnedAmount,
				"status":          invoice.Status,
				"version":         invoice.Version,
				"updated_at":      invoice.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrentModification
		}

		return saveInvoiceItems(tx, invoice)
	})
}

func saveInvoiceItems(tx *gorm.DB, invoice *purchase.Invoice) error {
	for i := range invoice.Items {
		invoice.Items[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a purchase invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*purchase.Invoice, error) {
	var invoice purchase.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByInvoiceNumber finds a purchase invoice by number within a tenant
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*purchase.Invoice, error) {
	var invoice purchase.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND invoice_number = ?", tenantID, invoiceNumber).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll returns purchase invoices for a tenant, newest first
func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*purchase.Invoice, error) {
	var invoices []*purchase.Invoice
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("invoice_date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ purchase.InvoiceRepository = (*GormInvoiceRepository)(nil)
