package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to add a catalog product
type CreateProductRequest struct {
	Code         string          `json:"code" binding:"required,min=1,max=50"`
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"max=2000"`
	Unit         string          `json:"unit" binding:"max=20"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description  *string          `json:"description" binding:"omitempty,max=2000"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
}

// AddVariantRequest represents a request to add a variant to a product
type AddVariantRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
	SKU  string `json:"sku" binding:"max=50"`
}

// VariantResponse represents a product variant
type VariantResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku,omitempty"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	LastPurchasePrice decimal.Decimal `json:"last_purchase_price"`
}

// ProductResponse represents a catalog product
type ProductResponse struct {
	ID                uuid.UUID             `json:"id"`
	Code              string                `json:"code"`
	Name              string                `json:"name"`
	Description       string                `json:"description,omitempty"`
	Unit              string                `json:"unit"`
	SellingPrice      decimal.Decimal       `json:"selling_price"`
	LastPurchasePrice decimal.Decimal       `json:"last_purchase_price"`
	CurrentQuantity   decimal.Decimal       `json:"current_quantity"`
	HasVariants       bool                  `json:"has_variants"`
	Status            catalog.ProductStatus `json:"status"`
	Variants          []VariantResponse     `json:"variants,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// ToProductResponse maps a product to its response
func ToProductResponse(p *catalog.Product) ProductResponse {
	variants := make([]VariantResponse, len(p.Variants))
	for i, v := range p.Variants {
		variants[i] = VariantResponse{
			ID:                v.ID,
			Name:              v.Name,
			SKU:               v.SKU,
			CurrentQuantity:   v.CurrentQuantity,
			LastPurchasePrice: v.LastPurchasePrice,
		}
	}
	return ProductResponse{
		ID:                p.ID,
		Code:              p.Code,
		Name:              p.Name,
		Description:       p.Description,
		Unit:              p.Unit,
		SellingPrice:      p.SellingPrice,
		LastPurchasePrice: p.LastPurchasePrice,
		CurrentQuantity:   p.CurrentQuantity,
		HasVariants:       p.HasVariants,
		Status:            p.Status,
		Variants:          variants,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
