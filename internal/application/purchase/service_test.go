package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/application/apptest"
	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/shared"
)

func seedProduct(t *testing.T, fixture *apptest.Fixture, tenantID uuid.UUID) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(tenantID, "FABRIC", "Cotton fabric", "m")
	require.NoError(t, err)
	require.NoError(t, fixture.ProductRepo.Save(context.Background(), product))
	return product
}

func TestService_RecordInvoice(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()
	product := seedProduct(t, fixture, tenantID)

	invoiceDate := time.Now().Add(-24 * time.Hour)
	resp, err := svc.RecordInvoice(ctx, tenantID, RecordInvoiceRequest{
		InvoiceNumber: "SUP-2026-041",
		SupplierName:  "Mills & Co",
		InvoiceDate:   &invoiceDate,
		Items: []RecordInvoiceItemInput{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(5), UnitCost: decimal.NewFromInt(250)},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(1250)))
	assert.True(t, resp.Outstanding.Equal(decimal.NewFromInt(1250)))

	// one batch per line, keyed by the invoice date for FIFO ordering
	batches, err := fixture.BatchRepo.FindByInvoice(ctx, tenantID, resp.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "SUP-2026-041/1", batches[0].BatchNumber)
	assert.True(t, batches[0].UnitCost.Equal(decimal.NewFromInt(250)))
	assert.True(t, batches[0].QuantityReceived.Equal(decimal.NewFromInt(5)))
	assert.True(t, batches[0].InvoiceDate.Equal(invoiceDate))

	// stock and last purchase price move with the receipt
	assert.True(t, product.CurrentQuantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, product.LastPurchasePrice.Equal(decimal.NewFromInt(250)))

	// debit Inventory / credit Accounts Payable for the invoice total
	assert.True(t, fixture.AccountBalance(tenantID, ledger.AccountCodeInventory).Equal(decimal.NewFromInt(1250)))
	assert.True(t, fixture.AccountBalance(tenantID, ledger.AccountCodeAP).Equal(decimal.NewFromInt(1250)))

	assert.NoError(t, svc.VerifyPayableBalance(ctx, tenantID, resp.ID))
}

func TestService_RecordInvoice_RejectsDuplicateNumber(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()
	product := seedProduct(t, fixture, tenantID)

	req := RecordInvoiceRequest{
		InvoiceNumber: "SUP-2026-042",
		SupplierName:  "Mills & Co",
		Items: []RecordInvoiceItemInput{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(100)},
		},
	}
	_, err := svc.RecordInvoice(ctx, tenantID, req)
	require.NoError(t, err)

	_, err = svc.RecordInvoice(ctx, tenantID, req)
	require.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestService_RecordInvoice_MultipleLines(t *testing.T) {
	fixture := apptest.NewFixture()
	svc := NewService(fixture.Scope())
	tenantID := uuid.New()
	ctx := context.Background()
	product := seedProduct(t, fixture, tenantID)

	other, err := catalog.NewProduct(tenantID, "THREAD", "Thread spool", "pcs")
	require.NoError(t, err)
	require.NoError(t, fixture.ProductRepo.Save(ctx, other))

	resp, err := svc.RecordInvoice(ctx, tenantID, RecordInvoiceRequest{
		InvoiceNumber: "SUP-2026-043",
		SupplierName:  "Mills & Co",
		Items: []RecordInvoiceItemInput{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(250)},
			{ProductID: other.ID, Quantity: decimal.NewFromInt(40), UnitCost: decimal.NewFromInt(15)},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(3100)))

	batches, err := fixture.BatchRepo.FindByInvoice(ctx, tenantID, resp.ID)
	require.NoError(t, err)
	assert.Len(t, batches, 2)
	assert.True(t, fixture.AccountBalance(tenantID, ledger.AccountCodeAP).Equal(decimal.NewFromInt(3100)))
}
