package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBatch(t *testing.T, tenantID, productID uuid.UUID, invoiceDate time.Time, unitCost, qty int64) *PurchaseBatch {
	t.Helper()
	b, err := NewPurchaseBatch(tenantID, productID, nil, "B-"+invoiceDate.Format("20060102"),
		invoiceDate, decimal.NewFromInt(unitCost), decimal.NewFromInt(qty))
	require.NoError(t, err)
	return b
}

func TestFIFOAllocator_SelectBatches(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	allocator := NewFIFOAllocator()

	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
	}

	t.Run("consumes oldest batch first and splits across batches", func(t *testing.T) {
		older := newTestBatch(t, tenantID, productID, day(1), 100, 2)
		newer := newTestBatch(t, tenantID, productID, day(5), 120, 10)

		// newer listed first to prove ordering is by invoice date
		result, err := allocator.SelectBatches(decimal.NewFromInt(3), []PurchaseBatch{*newer, *older})
		require.NoError(t, err)

		require.Len(t, result.Lines, 2)
		assert.Equal(t, older.ID, result.Lines[0].BatchID)
		assert.True(t, result.Lines[0].Quantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, result.Lines[0].FullyConsumed)
		assert.Equal(t, newer.ID, result.Lines[1].BatchID)
		assert.True(t, result.Lines[1].Quantity.Equal(decimal.NewFromInt(1)))
		assert.False(t, result.Lines[1].FullyConsumed)

		assert.True(t, result.FullyFulfilled)
		assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(2*100+1*120)))
	})

	t.Run("spans more than two batches", func(t *testing.T) {
		b1 := newTestBatch(t, tenantID, productID, day(1), 100, 1)
		b2 := newTestBatch(t, tenantID, productID, day(2), 110, 1)
		b3 := newTestBatch(t, tenantID, productID, day(3), 120, 5)

		result, err := allocator.SelectBatches(decimal.NewFromInt(4), []PurchaseBatch{*b3, *b1, *b2})
		require.NoError(t, err)
		require.Len(t, result.Lines, 3)
		assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(100+110+2*120)))
	})

	t.Run("same invoice date falls back to creation order", func(t *testing.T) {
		first := newTestBatch(t, tenantID, productID, day(1), 100, 1)
		second := newTestBatch(t, tenantID, productID, day(1), 200, 1)
		second.CreatedAt = first.CreatedAt.Add(time.Minute)

		result, err := allocator.SelectBatches(decimal.NewFromInt(1), []PurchaseBatch{*second, *first})
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, first.ID, result.Lines[0].BatchID)
	})

	t.Run("reports shortfall when stock is insufficient", func(t *testing.T) {
		b := newTestBatch(t, tenantID, productID, day(1), 100, 2)

		result, err := allocator.SelectBatches(decimal.NewFromInt(5), []PurchaseBatch{*b})
		require.NoError(t, err)
		assert.False(t, result.FullyFulfilled)
		assert.True(t, result.ShortfallQuantity.Equal(decimal.NewFromInt(3)))
		assert.True(t, result.TotalAllocated.Equal(decimal.NewFromInt(2)))
	})

	t.Run("zero quantity is a no-op", func(t *testing.T) {
		result, err := allocator.SelectBatches(decimal.Zero, nil)
		require.NoError(t, err)
		assert.True(t, result.FullyFulfilled)
		assert.Empty(t, result.Lines)
	})

	t.Run("negative quantity is rejected", func(t *testing.T) {
		_, err := allocator.SelectBatches(decimal.NewFromInt(-1), nil)
		assert.Error(t, err)
	})

	t.Run("skips exhausted batches", func(t *testing.T) {
		spent := newTestBatch(t, tenantID, productID, day(1), 100, 2)
		spent.Consume(decimal.NewFromInt(2))
		fresh := newTestBatch(t, tenantID, productID, day(2), 120, 5)

		result, err := allocator.SelectBatches(decimal.NewFromInt(1), []PurchaseBatch{*spent, *fresh})
		require.NoError(t, err)
		require.Len(t, result.Lines, 1)
		assert.Equal(t, fresh.ID, result.Lines[0].BatchID)
	})
}

func TestApplyAllocation(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	older := newTestBatch(t, tenantID, productID, day1, 100, 2)
	newer := newTestBatch(t, tenantID, productID, day2, 120, 10)
	batches := []*PurchaseBatch{older, newer}

	result, err := NewFIFOAllocator().SelectBatches(decimal.NewFromInt(3), []PurchaseBatch{*older, *newer})
	require.NoError(t, err)

	require.NoError(t, ApplyAllocation(batches, result))
	assert.True(t, older.QuantitySold.Equal(decimal.NewFromInt(2)))
	assert.True(t, older.IsExhausted())
	assert.True(t, newer.QuantitySold.Equal(decimal.NewFromInt(1)))
	assert.True(t, newer.RemainingQuantity().Equal(decimal.NewFromInt(9)))
}

func TestCostShortfall(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	b := newTestBatch(t, tenantID, productID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 100, 2)

	result, err := NewFIFOAllocator().SelectBatches(decimal.NewFromInt(5), []PurchaseBatch{*b})
	require.NoError(t, err)
	require.False(t, result.FullyFulfilled)

	CostShortfall(result, decimal.NewFromInt(110))
	assert.True(t, result.FullyFulfilled)
	assert.True(t, result.ShortfallQuantity.IsZero())
	// 2 @ 100 covered, 3 @ 110 fallback
	assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(2*100+3*110)))
}

func TestPurchaseBatch_RestoreSold(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	b := newTestBatch(t, tenantID, productID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 100, 10)
	b.Consume(decimal.NewFromInt(6))

	require.NoError(t, b.RestoreSold(decimal.NewFromInt(4)))
	assert.True(t, b.QuantitySold.Equal(decimal.NewFromInt(2)))
	assert.True(t, b.RemainingQuantity().Equal(decimal.NewFromInt(8)))

	t.Run("cannot restore more than sold", func(t *testing.T) {
		err := b.RestoreSold(decimal.NewFromInt(3))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		assert.Error(t, b.RestoreSold(decimal.Zero))
	})
}

func TestBatchAllocation_MarkRestocked(t *testing.T) {
	alloc := &BatchAllocation{
		Quantity:  decimal.NewFromInt(5),
		UnitCost:  decimal.NewFromInt(100),
		TotalCost: decimal.NewFromInt(500),
		Restocked: decimal.Zero,
	}

	require.NoError(t, alloc.MarkRestocked(decimal.NewFromInt(3)))
	assert.True(t, alloc.RemainingQuantity().Equal(decimal.NewFromInt(2)))

	err := alloc.MarkRestocked(decimal.NewFromInt(3))
	assert.Error(t, err)
}
