package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/inventory"
	"github.com/merchantry/backend/internal/domain/shared"
)

// Costing is the FIFO costing engine bound to one transaction scope's
// repositories. It owns every mutation of product stock levels: callers
// never touch CurrentQuantity directly.
type Costing struct {
	products    catalog.ProductRepository
	batches     inventory.PurchaseBatchRepository
	allocations inventory.AllocationRepository
	allocator   *inventory.FIFOAllocator
	// blockOnShortfall makes allocation fail with INSUFFICIENT_STOCK when
	// batches cannot cover the request. When false, stock may go negative
	// and the shortfall is costed at the product's last purchase price.
	blockOnShortfall bool
}

// NewCosting creates a costing engine over scope-bound repositories
func NewCosting(products catalog.ProductRepository, batches inventory.PurchaseBatchRepository, allocations inventory.AllocationRepository, blockOnShortfall bool) *Costing {
	return &Costing{
		products:         products,
		batches:          batches,
		allocations:      allocations,
		allocator:        inventory.NewFIFOAllocator(),
		blockOnShortfall: blockOnShortfall,
	}
}

// Allocate consumes stock for a product or variant in FIFO order and
// records one BatchAllocation per consumed batch. The returned result's
// totals are the fixed COGS basis for the allocated quantity.
func (c *Costing) Allocate(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, quantity decimal.Decimal, orderID *uuid.UUID) (*inventory.AllocationResult, error) {
	if quantity.IsZero() {
		return &inventory.AllocationResult{FullyFulfilled: true}, nil
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Allocation quantity cannot be negative")
	}

	product, err := c.products.FindByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	batchList, err := c.batches.FindForProduct(ctx, tenantID, productID, variantID)
	if err != nil {
		return nil, err
	}

	result, err := c.allocator.SelectBatches(quantity, batchList)
	if err != nil {
		return nil, err
	}
	if !result.FullyFulfilled {
		if c.blockOnShortfall {
			return nil, shared.ErrInsufficientStock
		}
		fallback := product.LastPurchasePrice
		if variantID != nil {
			if variant, verr := c.products.FindVariantByID(ctx, tenantID, *variantID); verr == nil {
				fallback = variant.LastPurchasePrice
			}
		}
		inventory.CostShortfall(result, fallback)
	}

	consumed := make([]*inventory.PurchaseBatch, 0, len(result.Lines))
	for i := range batchList {
		consumed = append(consumed, &batchList[i])
	}
	if err := inventory.ApplyAllocation(consumed, result); err != nil {
		return nil, err
	}

	touched := make([]*inventory.PurchaseBatch, 0, len(result.Lines))
	records := make([]*inventory.BatchAllocation, 0, len(result.Lines))
	for _, line := range result.Lines {
		for _, b := range consumed {
			if b.ID == line.BatchID {
				touched = append(touched, b)
				break
			}
		}
		records = append(records, &inventory.BatchAllocation{
			BaseEntity: shared.NewBaseEntity(),
			TenantID:   tenantID,
			BatchID:    line.BatchID,
			OrderID:    orderID,
			ProductID:  productID,
			VariantID:  variantID,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitCost,
			TotalCost:  line.TotalCost,
			Restocked:  decimal.Zero,
		})
	}

	if len(touched) > 0 {
		if err := c.batches.SaveAll(ctx, touched); err != nil {
			return nil, err
		}
	}
	if len(records) > 0 {
		if err := c.allocations.SaveAll(ctx, records); err != nil {
			return nil, err
		}
	}

	if err := c.products.AdjustQuantity(ctx, tenantID, productID, variantID, quantity.Neg()); err != nil {
		return nil, err
	}

	return result, nil
}

// Restock returns quantity to stock. When originBatchID is known from a
// prior allocation, the batch's sold counter is restored so profit reports
// show reduced sold quantity; otherwise only the product level moves.
func (c *Costing) Restock(ctx context.Context, tenantID, productID uuid.UUID, variantID *uuid.UUID, quantity decimal.Decimal, originBatchID *uuid.UUID) error {
	if quantity.IsZero() {
		return nil
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Restock quantity cannot be negative")
	}

	if originBatchID != nil {
		batch, err := c.batches.FindByID(ctx, tenantID, *originBatchID)
		if err != nil {
			return err
		}
		if err := batch.RestoreSold(quantity); err != nil {
			return err
		}
		if err := c.batches.Save(ctx, batch); err != nil {
			return err
		}
	}

	return c.products.AdjustQuantity(ctx, tenantID, productID, variantID, quantity)
}

// RestockOrderAllocations unwinds every allocation recorded for an order,
// restoring batch sold counters and product quantities. Used when a
// confirmed order is cancelled or fully returned.
func (c *Costing) RestockOrderAllocations(ctx context.Context, tenantID, orderID uuid.UUID) error {
	allocs, err := c.allocations.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return err
	}

	for _, alloc := range allocs {
		remaining := alloc.RemainingQuantity()
		if remaining.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if err := c.Restock(ctx, tenantID, alloc.ProductID, alloc.VariantID, remaining, &alloc.BatchID); err != nil {
			return err
		}
		if err := alloc.MarkRestocked(remaining); err != nil {
			return err
		}
		if err := c.allocations.Save(ctx, alloc); err != nil {
			return err
		}
	}
	return nil
}

// RestockReturnedQuantity unwinds allocations for one product line of an
// order up to the returned quantity, oldest allocation first.
func (c *Costing) RestockReturnedQuantity(ctx context.Context, tenantID, orderID, productID uuid.UUID, variantID *uuid.UUID, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Returned quantity must be positive")
	}

	allocs, err := c.allocations.FindByOrder(ctx, tenantID, orderID)
	if err != nil {
		return err
	}

	remaining := quantity
	for _, alloc := range allocs {
		if remaining.IsZero() {
			break
		}
		if alloc.ProductID != productID || !equalVariant(alloc.VariantID, variantID) {
			continue
		}
		available := alloc.RemainingQuantity()
		if available.LessThanOrEqual(decimal.Zero) {
			continue
		}

		restore := decimal.Min(remaining, available)
		if err := c.Restock(ctx, tenantID, productID, variantID, restore, &alloc.BatchID); err != nil {
			return err
		}
		if err := alloc.MarkRestocked(restore); err != nil {
			return err
		}
		if err := c.allocations.Save(ctx, alloc); err != nil {
			return err
		}
		remaining = remaining.Sub(restore)
	}

	if remaining.GreaterThan(decimal.Zero) {
		// more came back than was ever allocated; restock the difference
		// at the product level only
		return c.products.AdjustQuantity(ctx, tenantID, productID, variantID, remaining)
	}
	return nil
}

func equalVariant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
