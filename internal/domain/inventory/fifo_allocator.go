package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// FIFOAllocator selects purchase batches for consumption in first-in
// first-out order. Ordering key is (InvoiceDate, CreatedAt) ascending.
type FIFOAllocator struct{}

// NewFIFOAllocator creates a new FIFO allocator
func NewFIFOAllocator() *FIFOAllocator {
	return &FIFOAllocator{}
}

// SelectBatches calculates which batches to consume and how much from each.
// It does not mutate the batches; apply the result with ApplyAllocation.
func (a *FIFOAllocator) SelectBatches(requestedQuantity decimal.Decimal, batches []PurchaseBatch) (*AllocationResult, error) {
	if requestedQuantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity cannot be negative")
	}
	if requestedQuantity.IsZero() {
		return &AllocationResult{
			Lines:          make([]AllocationLine, 0),
			FullyFulfilled: true,
		}, nil
	}

	available := make([]PurchaseBatch, 0, len(batches))
	for _, b := range batches {
		if !b.IsExhausted() {
			available = append(available, b)
		}
	}

	sort.Slice(available, func(i, j int) bool {
		if !available[i].InvoiceDate.Equal(available[j].InvoiceDate) {
			return available[i].InvoiceDate.Before(available[j].InvoiceDate)
		}
		return available[i].CreatedAt.Before(available[j].CreatedAt)
	})

	lines := make([]AllocationLine, 0)
	remaining := requestedQuantity
	totalAllocated := decimal.Zero
	totalCost := decimal.Zero

	for _, batch := range available {
		if remaining.IsZero() {
			break
		}

		take := decimal.Min(remaining, batch.RemainingQuantity())
		if take.LessThanOrEqual(decimal.Zero) {
			continue
		}
		remainingInBatch := batch.RemainingQuantity().Sub(take)
		lineCost := take.Mul(batch.UnitCost)

		lines = append(lines, AllocationLine{
			BatchID:          batch.ID,
			BatchNumber:      batch.BatchNumber,
			Quantity:         take,
			UnitCost:         batch.UnitCost,
			TotalCost:        lineCost,
			RemainingInBatch: remainingInBatch,
			FullyConsumed:    remainingInBatch.IsZero(),
		})

		totalAllocated = totalAllocated.Add(take)
		totalCost = totalCost.Add(lineCost)
		remaining = remaining.Sub(take)
	}

	var weightedAvgCost decimal.Decimal
	if totalAllocated.GreaterThan(decimal.Zero) {
		weightedAvgCost = totalCost.Div(totalAllocated).Round(4)
	}

	return &AllocationResult{
		Lines:               lines,
		TotalAllocated:      totalAllocated,
		TotalCost:           totalCost,
		WeightedAverageCost: weightedAvgCost,
		ShortfallQuantity:   remaining,
		FullyFulfilled:      remaining.IsZero(),
	}, nil
}

// ApplyAllocation records the selected consumption on the batch entities
func ApplyAllocation(batches []*PurchaseBatch, result *AllocationResult) error {
	if result == nil {
		return shared.NewDomainError("INVALID_RESULT", "Allocation result cannot be nil")
	}

	batchMap := make(map[uuid.UUID]*PurchaseBatch)
	for _, b := range batches {
		batchMap[b.ID] = b
	}

	for _, line := range result.Lines {
		batch, exists := batchMap[line.BatchID]
		if !exists {
			return shared.NewDomainError("BATCH_NOT_FOUND", "Batch not found: "+line.BatchID.String())
		}
		consumed := batch.Consume(line.Quantity)
		if !consumed.Equal(line.Quantity) {
			return shared.NewDomainError("ALLOCATION_MISMATCH", "Batch consumption amount mismatch")
		}
	}
	return nil
}

// CostShortfall values the unfulfilled remainder of a result at a fallback
// unit cost, typically the product's last purchase price. Used when stock
// may go negative and a cost basis is still required for COGS.
func CostShortfall(result *AllocationResult, fallbackUnitCost decimal.Decimal) {
	if result == nil || result.ShortfallQuantity.LessThanOrEqual(decimal.Zero) {
		return
	}
	if fallbackUnitCost.IsNegative() {
		fallbackUnitCost = decimal.Zero
	}

	shortfallCost := result.ShortfallQuantity.Mul(fallbackUnitCost)
	result.TotalCost = result.TotalCost.Add(shortfallCost)
	result.TotalAllocated = result.TotalAllocated.Add(result.ShortfallQuantity)
	result.ShortfallQuantity = decimal.Zero
	result.FullyFulfilled = true
	if result.TotalAllocated.GreaterThan(decimal.Zero) {
		result.WeightedAverageCost = result.TotalCost.Div(result.TotalAllocated).Round(4)
	}
}

// ValidateAvailability checks whether the batches can cover the requested
// quantity, returning the total remaining quantity either way.
func ValidateAvailability(batches []PurchaseBatch, requestedQuantity decimal.Decimal) (bool, decimal.Decimal) {
	totalAvailable := decimal.Zero
	for _, b := range batches {
		if !b.IsExhausted() {
			totalAvailable = totalAvailable.Add(b.RemainingQuantity())
		}
	}
	return totalAvailable.GreaterThanOrEqual(requestedQuantity), totalAvailable
}
