package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/merchantry/backend/internal/application/ledger"
	orderapp "github.com/merchantry/backend/internal/application/order"
	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/inventory"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/persistence"
)

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// orderFlowEnv seeds one tenant's worth of catalog, inventory and courier
// data through the real repositories and exposes the services under test.
type orderFlowEnv struct {
	scope     *persistence.GormTransactionScope
	orders    *orderapp.Service
	ledgers   *ledgerapp.Service
	tenantID  uuid.UUID
	productID uuid.UUID
	batchIDs  []uuid.UUID
	companyID uuid.UUID
}

func newOrderFlowEnv(t *testing.T) *orderFlowEnv {
	t.Helper()

	tdb := NewSharedTestDB(t)
	scope := persistence.NewGormTransactionScope(tdb.DB)
	tenantID := uuid.New()
	ctx := context.Background()

	env := &orderFlowEnv{
		scope:    scope,
		orders:   orderapp.NewService(scope, true),
		ledgers:  ledgerapp.NewService(scope),
		tenantID: tenantID,
	}

	err := scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		product, err := catalog.NewProduct(tenantID, "TEA-001", "Green Tea", "box")
		if err != nil {
			return err
		}
		product.SellingPrice = decimal.NewFromInt(500)
		product.CurrentQuantity = decimal.NewFromInt(15)
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		env.productID = product.ID

		older, err := inventory.NewPurchaseBatch(tenantID, product.ID, nil, "INV-1/1",
			time.Now().Add(-48*time.Hour), decimal.NewFromInt(100), decimal.NewFromInt(10))
		if err != nil {
			return err
		}
		newer, err := inventory.NewPurchaseBatch(tenantID, product.ID, nil, "INV-2/1",
			time.Now().Add(-24*time.Hour), decimal.NewFromInt(120), decimal.NewFromInt(5))
		if err != nil {
			return err
		}
		if err := repos.Batches().SaveAll(ctx, []*inventory.PurchaseBatch{older, newer}); err != nil {
			return err
		}
		env.batchIDs = []uuid.UUID{older.ID, newer.ID}

		company, err := logistics.NewLogisticsCompany(tenantID, "Swift Couriers", logistics.CodFeePaidByCustomer)
		if err != nil {
			return err
		}
		if err := company.ConfigureRangeFee([]logistics.CodFeeRange{
			{BaseEntity: shared.NewBaseEntity(), Min: decimal.Zero, Max: decimal.NewFromInt(5000), Fee: decimal.NewFromInt(50)},
			{BaseEntity: shared.NewBaseEntity(), Min: decimal.NewFromInt(5000), Max: decimal.NewFromInt(10000), Fee: decimal.NewFromInt(75)},
		}); err != nil {
			return err
		}
		if err := repos.Companies().Save(ctx, company); err != nil {
			return err
		}
		env.companyID = company.ID
		return nil
	})
	require.NoError(t, err, "Failed to seed test data")

	return env
}

func (e *orderFlowEnv) submit(t *testing.T, quantity int64) *orderapp.OrderResponse {
	t.Helper()
	resp, err := e.orders.Submit(context.Background(), e.tenantID, orderapp.SubmitOrderRequest{
		CustomerName:    "Amina",
		ShippingCharges: decimal.NewFromInt(200),
		Items: []orderapp.SubmitOrderItemInput{
			{ProductID: e.productID, Quantity: decimal.NewFromInt(quantity), UnitPrice: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)
	return resp
}

func (e *orderFlowEnv) accountBalance(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	account, err := e.ledgers.GetAccount(context.Background(), e.tenantID, code)
	require.NoError(t, err)
	return account.Balance
}

func (e *orderFlowEnv) productQuantity(t *testing.T) decimal.Decimal {
	t.Helper()
	var qty decimal.Decimal
	err := e.scope.Execute(context.Background(), func(repos unitofwork.Repositories) error {
		product, err := repos.Products().FindByID(context.Background(), e.tenantID, e.productID)
		if err != nil {
			return err
		}
		qty = product.CurrentQuantity
		return nil
	})
	require.NoError(t, err)
	return qty
}

func TestOrderLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newOrderFlowEnv(t)
	ctx := context.Background()

	submitted := env.submit(t, 12)
	assert.Equal(t, order.OrderStatusPending, submitted.Status)
	assert.True(t, submitted.ProductsTotal.Equal(decimal.NewFromInt(6000)))

	// Confirmation consumes FIFO across both batches: 10 at 100, 2 at 120
	confirmed, err := env.orders.Confirm(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusConfirmed, confirmed.Status)
	require.Len(t, confirmed.Items, 1)
	assert.True(t, confirmed.Items[0].CostTotal.Equal(decimal.NewFromInt(1240)),
		"expected 10x100 + 2x120, got %s", confirmed.Items[0].CostTotal)

	assert.True(t, env.productQuantity(t).Equal(decimal.NewFromInt(3)))

	err = env.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		older, err := repos.Batches().FindByID(ctx, env.tenantID, env.batchIDs[0])
		if err != nil {
			return err
		}
		newer, err := repos.Batches().FindByID(ctx, env.tenantID, env.batchIDs[1])
		if err != nil {
			return err
		}
		assert.True(t, older.QuantitySold.Equal(decimal.NewFromInt(10)))
		assert.True(t, newer.QuantitySold.Equal(decimal.NewFromInt(2)))
		return nil
	})
	require.NoError(t, err)

	assert.True(t, env.accountBalance(t, ledger.AccountCodeSales).Equal(decimal.NewFromInt(6000)))
	assert.True(t, env.accountBalance(t, ledger.AccountCodeShippingRevenue).Equal(decimal.NewFromInt(200)))

	// COD amount is 6000 + 200 - 0 = 6200, landing in the 5000-10000
	// bracket; the actual cost of 180 against 200 committed opens a
	// 20 variance in the merchant's favor
	actual := decimal.NewFromInt(180)
	dispatched, err := env.orders.Dispatch(ctx, env.tenantID, submitted.ID, orderapp.DispatchOrderRequest{
		LogisticsCompanyID: &env.companyID,
		ActualShippingCost: &actual,
	})
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusDispatched, dispatched.Status)
	assert.True(t, dispatched.CodAmount.Equal(decimal.NewFromInt(6200)))
	assert.True(t, dispatched.CodFee.Equal(decimal.NewFromInt(75)))
	require.NotNil(t, dispatched.ShippingVariance)
	assert.True(t, dispatched.ShippingVariance.Equal(decimal.NewFromInt(20)))

	assert.True(t, env.accountBalance(t, ledger.AccountCodeCodFeeRevenue).Equal(decimal.NewFromInt(75)))
	assert.True(t, env.accountBalance(t, ledger.AccountCodeVarianceIncome).Equal(decimal.NewFromInt(20)))

	completed, err := env.orders.Complete(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
}

func TestOrderLifecycle_CancelAfterConfirmRestocks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newOrderFlowEnv(t)
	ctx := context.Background()

	submitted := env.submit(t, 4)
	_, err := env.orders.Confirm(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)
	assert.True(t, env.productQuantity(t).Equal(decimal.NewFromInt(11)))

	cancelled, err := env.orders.Cancel(ctx, env.tenantID, submitted.ID, orderapp.CancelOrderRequest{
		Reason: "customer changed their mind",
	})
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, cancelled.Status)

	// Inventory comes back and the revenue posting is reversed
	assert.True(t, env.productQuantity(t).Equal(decimal.NewFromInt(15)))
	assert.True(t, env.accountBalance(t, ledger.AccountCodeSales).IsZero())

	err = env.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		batch, err := repos.Batches().FindByID(ctx, env.tenantID, env.batchIDs[0])
		if err != nil {
			return err
		}
		assert.True(t, batch.QuantitySold.IsZero())
		return nil
	})
	require.NoError(t, err)
}

func TestOrderLifecycle_InsufficientStockBlocksConfirm(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newOrderFlowEnv(t)
	ctx := context.Background()

	// Only 15 units exist across both batches
	submitted := env.submit(t, 20)
	_, err := env.orders.Confirm(ctx, env.tenantID, submitted.ID)
	require.Error(t, err)

	// The transaction rolled back: nothing was consumed and the order
	// is still pending
	assert.True(t, env.productQuantity(t).Equal(decimal.NewFromInt(15)))
	fetched, err := env.orders.GetByID(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusPending, fetched.Status)
}

func TestOrderRepository_TenantIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	env := newOrderFlowEnv(t)
	ctx := context.Background()

	submitted := env.submit(t, 1)

	otherTenant := uuid.New()
	_, err := env.orders.GetByID(ctx, otherTenant, submitted.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	listed, total, err := env.orders.ListByStatus(ctx, otherTenant, order.OrderStatusPending, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Zero(t, total)
}
