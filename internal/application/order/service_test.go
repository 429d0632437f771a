package order

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
	"github.com/merchantry/backend/internal/domain/inventory"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/shared"
)

type lifecycleEnv struct {
	fixture  *apptest.Fixture
	svc      *Service
	tenantID uuid.UUID
	product  *catalog.Product
	company  *logistics.LogisticsCompany
}

// newLifecycleEnv seeds a product with two FIFO batches (10 units at 100,
// then 10 units at 120) and a courier charging a range-based COD fee paid
// by the customer.
func newLifecycleEnv(t *testing.T, blockOnInsufficientStock bool) *lifecycleEnv {
	t.Helper()
	fixture := apptest.NewFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	product, err := catalog.NewProduct(tenantID, "WIDGET", "Widget", "pcs")
	require.NoError(t, err)
	product.SellingPrice = decimal.NewFromInt(500)
	product.LastPurchasePrice = decimal.NewFromInt(120)
	product.CurrentQuantity = decimal.NewFromInt(20)
	require.NoError(t, fixture.ProductRepo.Save(ctx, product))

	older, err := inventory.NewPurchaseBatch(tenantID, product.ID, nil, "INV-1/1",
		time.Now().Add(-48*time.Hour), decimal.NewFromInt(100), decimal.NewFromInt(10))
	require.NoError(t, err)
	newer, err := inventory.NewPurchaseBatch(tenantID, product.ID, nil, "INV-2/1",
		time.Now().Add(-24*time.Hour), decimal.NewFromInt(120), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, fixture.BatchRepo.Save(ctx, older))
	require.NoError(t, fixture.BatchRepo.Save(ctx, newer))

	company, err := logistics.NewLogisticsCompany(tenantID, "Swift Couriers", logistics.CodFeePaidByCustomer)
	require.NoError(t, err)
	require.NoError(t, company.ConfigureRangeFee([]logistics.CodFeeRange{
		{Min: decimal.Zero, Max: decimal.NewFromInt(5000), Fee: decimal.NewFromInt(50)},
		{Min: decimal.NewFromInt(5000), Max: decimal.NewFromInt(10000), Fee: decimal.NewFromInt(75)},
	}))
	require.NoError(t, fixture.CompanyRepo.Save(ctx, company))

	return &lifecycleEnv{
		fixture:  fixture,
		svc:      NewService(fixture.Scope(), blockOnInsufficientStock),
		tenantID: tenantID,
		product:  product,
		company:  company,
	}
}

func (e *lifecycleEnv) balance(code string) decimal.Decimal {
	return e.fixture.AccountBalance(e.tenantID, code)
}

func (e *lifecycleEnv) submit(t *testing.T, quantity int64) *OrderResponse {
	t.Helper()
	resp, err := e.svc.Submit(context.Background(), e.tenantID, SubmitOrderRequest{
		CustomerName:    "Amina",
		ShippingCharges: decimal.NewFromInt(200),
		Items: []SubmitOrderItemInput{
			{ProductID: e.product.ID, Quantity: decimal.NewFromInt(quantity), UnitPrice: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)
	return resp
}

func TestService_Lifecycle(t *testing.T) {
	env := newLifecycleEnv(t, true)
	ctx := context.Background()

	submitted := env.submit(t, 12)
	assert.Equal(t, order.OrderStatusPending, submitted.Status)
	assert.True(t, submitted.ProductsTotal.Equal(decimal.NewFromInt(6000)))
	// submission alone touches neither stock nor the ledger
	assert.True(t, env.product.CurrentQuantity.Equal(decimal.NewFromInt(20)))
	assert.Empty(t, env.fixture.TransactionRepo.All())

	confirmed, err := env.svc.Confirm(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusConfirmed, confirmed.Status)

	// FIFO: 10 units from the 100 batch, 2 from the 120 batch
	require.Len(t, confirmed.Items, 1)
	assert.True(t, confirmed.Items[0].CostTotal.Equal(decimal.NewFromInt(1240)),
		"got %s", confirmed.Items[0].CostTotal)
	assert.True(t, env.product.CurrentQuantity.Equal(decimal.NewFromInt(8)))

	// revenue posting: AR carries products plus shipping
	assert.True(t, env.balance(ledger.AccountCodeAR).Equal(decimal.NewFromInt(6200)))
	assert.True(t, env.balance(ledger.AccountCodeSales).Equal(decimal.NewFromInt(6000)))
	assert.True(t, env.balance(ledger.AccountCodeShippingRevenue).Equal(decimal.NewFromInt(200)))

	actual := decimal.NewFromInt(500)
	companyID := env.company.ID
	dispatched, err := env.svc.Dispatch(ctx, env.tenantID, submitted.ID, DispatchOrderRequest{
		LogisticsCompanyID: &companyID,
		ActualShippingCost: &actual,
	})
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusDispatched, dispatched.Status)

	// COD amount 6200 falls in the 5000-10000 bracket
	assert.True(t, dispatched.CodAmount.Equal(decimal.NewFromInt(6200)))
	assert.True(t, dispatched.CodFee.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, logistics.CodFeeTypeRangeBased, dispatched.CodFeeType)

	// fee paid by the customer: expense and payable always, plus receivable revenue
	assert.True(t, env.balance(ledger.AccountCodeCodFeeExpense).Equal(decimal.NewFromInt(75)))
	assert.True(t, env.balance(ledger.AccountCodeCodFeeRevenue).Equal(decimal.NewFromInt(75)))
	assert.True(t, env.balance(ledger.AccountCodeAR).Equal(decimal.NewFromInt(6275)))

	// actual 500 against committed 200: variance -300 booked as expense,
	// while the customer-facing shipping charge stays frozen
	require.NotNil(t, dispatched.ShippingVariance)
	assert.True(t, dispatched.ShippingVariance.Equal(decimal.NewFromInt(-300)))
	assert.True(t, dispatched.ShippingCharges.Equal(decimal.NewFromInt(200)))
	assert.True(t, env.balance(ledger.AccountCodeShippingExpense).Equal(decimal.NewFromInt(300)))
	assert.True(t, env.balance(ledger.AccountCodeVarianceExpense).Equal(decimal.NewFromInt(300)))

	completed, err := env.svc.Complete(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCompleted, completed.Status)
}

func TestService_AdjustShippingCost_ReplacesPriorPosting(t *testing.T) {
	env := newLifecycleEnv(t, true)
	ctx := context.Background()

	submitted := env.submit(t, 2)
	_, err := env.svc.Confirm(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)

	actual := decimal.NewFromInt(500)
	_, err = env.svc.Dispatch(ctx, env.tenantID, submitted.ID, DispatchOrderRequest{ActualShippingCost: &actual})
	require.NoError(t, err)
	assert.True(t, env.balance(ledger.AccountCodeVarianceExpense).Equal(decimal.NewFromInt(300)))

	// the courier corrects the cost down to 150: the expense episode is
	// reversed and a 50 income episode replaces it
	adjusted, err := env.svc.AdjustShippingCost(ctx, env.tenantID, submitted.ID, AdjustShippingCostRequest{
		ActualShippingCost: decimal.NewFromInt(150),
	})
	require.NoError(t, err)
	require.NotNil(t, adjusted.ShippingVariance)
	assert.True(t, adjusted.ShippingVariance.Equal(decimal.NewFromInt(50)))
	assert.True(t, adjusted.ShippingCharges.Equal(decimal.NewFromInt(200)))

	assert.True(t, env.balance(ledger.AccountCodeVarianceExpense).IsZero())
	assert.True(t, env.balance(ledger.AccountCodeVarianceIncome).Equal(decimal.NewFromInt(50)))
	assert.True(t, env.balance(ledger.AccountCodeShippingExpense).Equal(decimal.NewFromInt(-50)))

	episodes, err := env.fixture.TransactionRepo.FindBySourceAndKind(ctx, env.tenantID,
		ledger.SourceTypeOrder, submitted.ID, ledger.EntryKindShippingVariance)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, 1, episodes[0].VarianceEpisode)
	assert.Equal(t, 2, episodes[1].VarianceEpisode)

	// correcting to the committed amount leaves no open variance posting
	_, err = env.svc.AdjustShippingCost(ctx, env.tenantID, submitted.ID, AdjustShippingCostRequest{
		ActualShippingCost: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.True(t, env.balance(ledger.AccountCodeVarianceIncome).IsZero())
	assert.True(t, env.balance(ledger.AccountCodeShippingExpense).IsZero())
	assert.True(t, env.balance(ledger.AccountCodeVarianceExpense).IsZero())
}

func TestService_Cancel_ConfirmedOrderRestocksAndReverses(t *testing.T) {
	env := newLifecycleEnv(t, true)
	ctx := context.Background()

	submitted := env.submit(t, 12)
	_, err := env.svc.Confirm(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)
	assert.True(t, env.product.CurrentQuantity.Equal(decimal.NewFromInt(8)))

	cancelled, err := env.svc.Cancel(ctx, env.tenantID, submitted.ID, CancelOrderRequest{Reason: "customer changed their mind"})
	require.NoError(t, err)
	assert.Equal(t, order.OrderStatusCancelled, cancelled.Status)

	assert.True(t, env.product.CurrentQuantity.Equal(decimal.NewFromInt(20)))
	assert.True(t, env.balance(ledger.AccountCodeAR).IsZero())
	assert.True(t, env.balance(ledger.AccountCodeSales).IsZero())

	batches, err := env.fixture.BatchRepo.FindForProduct(ctx, env.tenantID, env.product.ID, nil)
	require.NoError(t, err)
	for _, b := range batches {
		assert.True(t, b.QuantitySold.IsZero(), "batch %s still has sold quantity", b.BatchNumber)
	}
}

func TestService_Cancel_PendingOrderHasNoLedgerEffect(t *testing.T) {
	env := newLifecycleEnv(t, true)
	ctx := context.Background()

	submitted := env.submit(t, 3)
	_, err := env.svc.Cancel(ctx, env.tenantID, submitted.ID, CancelOrderRequest{Reason: "duplicate"})
	require.NoError(t, err)
	assert.Empty(t, env.fixture.TransactionRepo.All())
	assert.True(t, env.product.CurrentQuantity.Equal(decimal.NewFromInt(20)))
}

func TestService_Confirm_InsufficientStockBlocks(t *testing.T) {
	env := newLifecycleEnv(t, true)
	ctx := context.Background()

	submitted := env.submit(t, 50)
	_, err := env.svc.Confirm(ctx, env.tenantID, submitted.ID)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestService_Confirm_ShortfallCostedAtLastPurchasePrice(t *testing.T) {
	env := newLifecycleEnv(t, false)
	ctx := context.Background()

	submitted := env.submit(t, 30)
	confirmed, err := env.svc.Confirm(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)

	// 10 at 100, 10 at 120, the missing 10 at the last purchase price 120
	assert.True(t, confirmed.Items[0].CostTotal.Equal(decimal.NewFromInt(3400)),
		"got %s", confirmed.Items[0].CostTotal)
	assert.True(t, env.product.CurrentQuantity.Equal(decimal.NewFromInt(-10)))
}

func TestService_Submit_RejectsInactiveProduct(t *testing.T) {
	env := newLifecycleEnv(t, true)
	env.product.Disable()

	_, err := env.svc.Submit(context.Background(), env.tenantID, SubmitOrderRequest{
		CustomerName: "Amina",
		Items: []SubmitOrderItemInput{
			{ProductID: env.product.ID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(500)},
		},
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRODUCT_INACTIVE", domainErr.Code)
}

func TestService_Dispatch_WithoutCourierHasNoFee(t *testing.T) {
	env := newLifecycleEnv(t, true)
	ctx := context.Background()

	submitted := env.submit(t, 2)
	_, err := env.svc.Confirm(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)

	dispatched, err := env.svc.Dispatch(ctx, env.tenantID, submitted.ID, DispatchOrderRequest{})
	require.NoError(t, err)
	assert.True(t, dispatched.CodFee.IsZero())
	assert.Nil(t, dispatched.ShippingVariance)
	assert.True(t, env.balance(ledger.AccountCodeCodFeeExpense).IsZero())
}
