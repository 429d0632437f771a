package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merchantry/backend/internal/domain/shared"
)

// PurchaseBatch represents a quantity of stock received at a single unit
// cost, usually one line of a purchase invoice. Batches are the unit of
// FIFO cost attribution: sold quantity is matched against the oldest batch
// first, ordered by (InvoiceDate, CreatedAt) ascending.
//
// Batches are soft-deletable. Allocation history against a batch survives
// deletion so profit figures can always be recomputed.
type PurchaseBatch struct {
	shared.TenantAggregateRoot
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_product"`
	VariantID         *uuid.UUID      `gorm:"type:uuid;index"`
	PurchaseInvoiceID *uuid.UUID      `gorm:"type:uuid;index"`
	BatchNumber       string          `gorm:"type:varchar(50);not null"`
	InvoiceDate       time.Time       `gorm:"not null;index:idx_batch_product"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityReceived  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantitySold      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DeletedAt         gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (PurchaseBatch) TableName() string {
	return "purchase_batches"
}

// NewPurchaseBatch creates a new purchase batch
func NewPurchaseBatch(
	tenantID, productID uuid.UUID,
	variantID *uuid.UUID,
	batchNumber string,
	invoiceDate time.Time,
	unitCost, quantity decimal.Decimal,
) (*PurchaseBatch, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UNIT_COST", "Batch unit cost cannot be negative")
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	return &PurchaseBatch{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		VariantID:           variantID,
		BatchNumber:         batchNumber,
		InvoiceDate:         invoiceDate,
		UnitCost:            unitCost,
		QuantityReceived:    quantity,
		QuantitySold:        decimal.Zero,
	}, nil
}

// RemainingQuantity returns the unsold quantity left in the batch
func (b *PurchaseBatch) RemainingQuantity() decimal.Decimal {
	return b.QuantityReceived.Sub(b.QuantitySold)
}

// IsExhausted reports whether the batch has no remaining quantity
func (b *PurchaseBatch) IsExhausted() bool {
	return b.RemainingQuantity().LessThanOrEqual(decimal.Zero)
}

// Consume records a sale against the batch and returns the quantity
// actually consumed, capped at the remaining quantity.
func (b *PurchaseBatch) Consume(quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	consumed := decimal.Min(quantity, b.RemainingQuantity())
	if consumed.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	b.QuantitySold = b.QuantitySold.Add(consumed)
	b.UpdatedAt = time.Now()
	return consumed
}

// ReturnToSupplier removes quantity that is sent back to the supplier.
// The received counter shrinks so the batch's remaining quantity drops
// without inflating its sold figures.
func (b *PurchaseBatch) ReturnToSupplier(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
	}
	if quantity.GreaterThan(b.RemainingQuantity()) {
		return shared.NewDomainError("RETURN_EXCEEDS_REMAINING", "Cannot return more than remains in the batch")
	}
	b.QuantityReceived = b.QuantityReceived.Sub(quantity)
	b.UpdatedAt = time.Now()
	return nil
}

// RestoreSold reduces the sold counter after a return so subsequent
// profit reports show a lower sold quantity for this batch.
func (b *PurchaseBatch) RestoreSold(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Restore quantity must be positive")
	}
	if quantity.GreaterThan(b.QuantitySold) {
		return shared.NewDomainError("RESTORE_EXCEEDS_SOLD", "Cannot restore more than was sold from this batch")
	}
	b.QuantitySold = b.QuantitySold.Sub(quantity)
	b.UpdatedAt = time.Now()
	return nil
}
