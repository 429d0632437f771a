package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the persistence interface for products
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	SaveWithLock(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, includeInactive bool) ([]*Product, error)
	FindVariantByID(ctx context.Context, tenantID, variantID uuid.UUID) (*ProductVariant, error)
	// AdjustQuantity atomically applies a signed stock delta to a product
	// or, when variantID is non-nil, to one of its variants.
	AdjustQuantity(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, delta decimal.Decimal) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
