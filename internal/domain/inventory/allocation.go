package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// BatchAllocation is an audit record of quantity consumed from one batch
// for one order line. The UnitCost captured here is the batch's cost at
// allocation time and is the fixed COGS basis for that quantity, even if
// the batch is later adjusted or soft-deleted.
type BatchAllocation struct {
	shared.BaseEntity
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID    *uuid.UUID      `gorm:"type:uuid;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID  *uuid.UUID      `gorm:"type:uuid"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Restocked  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BatchAllocation) TableName() string {
	return "batch_allocations"
}

// RemainingQuantity returns the allocated quantity not yet restocked
func (a *BatchAllocation) RemainingQuantity() decimal.Decimal {
	return a.Quantity.Sub(a.Restocked)
}

// MarkRestocked records quantity returned against this allocation
func (a *BatchAllocation) MarkRestocked(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity must be positive")
	}
	if quantity.GreaterThan(a.RemainingQuantity()) {
		return shared.NewDomainError("RESTOCK_EXCEEDS_ALLOCATION", "Cannot restock more than was allocated")
	}
	a.Restocked = a.Restocked.Add(quantity)
	return nil
}

// AllocationLine describes quantity taken from a single batch during
// one allocation pass.
type AllocationLine struct {
	BatchID          uuid.UUID
	BatchNumber      string
	Quantity         decimal.Decimal
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	RemainingInBatch decimal.Decimal
	FullyConsumed    bool
}

// AllocationResult is the outcome of allocating a requested quantity
// across batches in FIFO order.
type AllocationResult struct {
	Lines               []AllocationLine
	TotalAllocated      decimal.Decimal
	TotalCost           decimal.Decimal
	WeightedAverageCost decimal.Decimal
	ShortfallQuantity   decimal.Decimal
	FullyFulfilled      bool
}
