package purchase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), "PI-2026-001", "Karachi Textiles",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = inv.AddItem(uuid.New(), nil, decimal.NewFromInt(10), decimal.NewFromInt(250))
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	inv := newTestInvoice(t)
	assert.Equal(t, InvoiceStatusRecorded, inv.Status)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(2500)))
	assert.True(t, inv.OutstandingPayable().Equal(decimal.NewFromInt(2500)))

	_, err := NewInvoice(uuid.New(), "", "Karachi Textiles", time.Time{})
	assert.Error(t, err)
	_, err = NewInvoice(uuid.New(), "PI-1", "", time.Time{})
	assert.Error(t, err)
}

func TestInvoice_AddItem(t *testing.T) {
	inv := newTestInvoice(t)

	_, err := inv.AddItem(uuid.New(), nil, decimal.NewFromInt(4), decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(2900)))

	_, err = inv.AddItem(uuid.Nil, nil, decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.Error(t, err)
	_, err = inv.AddItem(uuid.New(), nil, decimal.Zero, decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestInvoice_RecordSupplierReturn(t *testing.T) {
	inv := newTestInvoice(t)

	// qty 5 @ 250 returned
	require.NoError(t, inv.RecordSupplierReturn(decimal.NewFromInt(1250)))
	assert.True(t, inv.OutstandingPayable().Equal(decimal.NewFromInt(1250)))

	t.Run("payable invariant holds", func(t *testing.T) {
		assert.NoError(t, inv.VerifyPayable(decimal.NewFromInt(1250)))
		assert.Error(t, inv.VerifyPayable(decimal.NewFromInt(2500)))
	})

	t.Run("cannot return more than outstanding", func(t *testing.T) {
		err := inv.RecordSupplierReturn(decimal.NewFromInt(2000))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		assert.Error(t, inv.RecordSupplierReturn(decimal.Zero))
	})
}

func TestInvoice_Void(t *testing.T) {
	t.Run("voids a clean invoice", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Void())
		assert.Equal(t, InvoiceStatusVoided, inv.Status)

		_, err := inv.AddItem(uuid.New(), nil, decimal.NewFromInt(1), decimal.NewFromInt(1))
		assert.Error(t, err)
		assert.Error(t, inv.Void())
	})

	t.Run("cannot void after supplier returns", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.RecordSupplierReturn(decimal.NewFromInt(250)))
		assert.Error(t, inv.Void())
	})
}
