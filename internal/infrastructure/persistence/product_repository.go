package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Save creates or updates a product together with its variants
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(product).Error; err != nil {
			return err
		}
		return saveProductVariants(tx, product)
	})
}

// SaveWithLock persists the product with an optimistic version check
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&catalog.Product{}).
			Where("tenant_id = ? AND id = ?", product.TenantID, product.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if currentVersion != product.Version {
			return shared.ErrConcurrentModification
		}

		product.Version++
		product.UpdatedAt = time.Now()

		result := tx.Model(&catalog.Product{}).
			Where("tenant_id = ? AND id = ? AND version = ?", product.TenantID, product.ID, currentVersion).
			Updates(map[string]interface{}{
				"code":                product.Code,
				"name":                product.Name,
				"description":         product.Description,
				"unit":                product.Unit,
				"selling_price":       product.SellingPrice,
				"last_purchase_price": product.LastPurchasePrice,
				"current_quantity":    product.CurrentQuantity,
				"has_variants":        product.HasVariants,
				"status":              product.Status,
				"version":             product.Version,
				"updated_at":          product.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrentModification
		}

		return saveProductVariants(tx, product)
	})
}

func saveProductVariants(tx *gorm.DB, product *catalog.Product) error {
	for i := range product.Variants {
		product.Variants[i].ProductID = product.ID
		product.Variants[i].TenantID = product.TenantID
		if err := tx.Save(&product.Variants[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a product by ID within a tenant
func (r *GormProductRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByCode finds a product by its code within a tenant
func (r *GormProductRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(code)).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll returns all products for a tenant, optionally including inactive ones
func (r *GormProductRepository) FindAll(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]*catalog.Product, error) {
	var products []*catalog.Product
	query := r.db.WithContext(ctx).
		Preload("Variants").
		Where("tenant_id = ?", tenantID).
		Order("code ASC")
	if !includeInactive {
		query = query.Where("status = ?", catalog.ProductStatusActive)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindVariantByID finds a single variant by ID within a tenant
func (r *GormProductRepository) FindVariantByID(ctx context.Context, tenantID, variantID uuid.UUID) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, variantID).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// AdjustQuantity atomically applies a signed stock delta to a product or,
// when variantID is non-nil, to one of its variants. A variant delta also
// rolls up into the product total so the two stay consistent.
func (r *GormProductRepository) AdjustQuantity(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if variantID != nil {
			result := tx.Model(&catalog.ProductVariant{}).
				Where("tenant_id = ? AND id = ? AND product_id = ?", tenantID, variantID, productID).
				Updates(map[string]interface{}{
					"current_quantity": gorm.Expr("current_quantity + ?", delta),
					"updated_at":       gorm.Expr("NOW()"),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
		}

		result := tx.Model(&catalog.Product{}).
			Where("tenant_id = ? AND id = ?", tenantID, productID).
			Updates(map[string]interface{}{
				"current_quantity": gorm.Expr("current_quantity + ?", delta),
				"updated_at":       gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Delete removes a product and its variants
func (r *GormProductRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND product_id = ?", tenantID, id).
			Delete(&catalog.ProductVariant{}).Error; err != nil {
			return err
		}
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).
			Delete(&catalog.Product{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
