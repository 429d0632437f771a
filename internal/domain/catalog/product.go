package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a sellable product in the catalog.
// It is the aggregate root for product-related operations.
//
// CurrentQuantity is owned by the inventory costing engine: it is only
// mutated through allocation and restock, never directly by callers.
type Product struct {
	shared.TenantAggregateRoot
	Code              string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Name              string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	Unit              string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	HasVariants       bool            `gorm:"not null;default:false"`
	Status            ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	Variants          []ProductVariant `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, code, name, unit string) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if unit == "" {
		unit = "pcs"
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Unit:                unit,
		SellingPrice:        decimal.Zero,
		LastPurchasePrice:   decimal.Zero,
		CurrentQuantity:     decimal.Zero,
		Status:              ProductStatusActive,
	}, nil
}

// AddVariant adds a variant to the product
func (p *Product) AddVariant(name, sku string) (*ProductVariant, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT_NAME", "Variant name cannot be empty")
	}
	for _, v := range p.Variants {
		if v.SKU != "" && v.SKU == sku {
			return nil, shared.NewDomainError("DUPLICATE_SKU", "Variant SKU already exists on this product")
		}
	}

	variant := &ProductVariant{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         p.ID,
		TenantID:          p.TenantID,
		Name:              name,
		SKU:               sku,
		CurrentQuantity:   decimal.Zero,
		LastPurchasePrice: decimal.Zero,
	}
	p.Variants = append(p.Variants, *variant)
	p.HasVariants = true
	p.UpdatedAt = time.Now()

	return variant, nil
}

// RecordPurchasePrice updates the rolling last purchase price reference
func (p *Product) RecordPurchasePrice(unitCost decimal.Decimal) {
	if unitCost.IsNegative() {
		return
	}
	p.LastPurchasePrice = unitCost
	p.UpdatedAt = time.Now()
}

// Disable marks the product inactive; existing orders keep their snapshots
func (p *Product) Disable() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
}

// IsActive reports whether the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// ProductVariant is a child entity of Product carrying its own stock level
// and purchase-price reference (e.g. size/color of the same product).
type ProductVariant struct {
	shared.BaseEntity
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name              string          `gorm:"type:varchar(200);not null"`
	SKU               string          `gorm:"type:varchar(50)"`
	CurrentQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastPurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}
