package returns

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/application/apptest"
	orderapp "github.com/merchantry/backend/internal/application/order"
	purchaseapp "github.com/merchantry/backend/internal/application/purchase"
	"github.com/merchantry/backend/internal/domain/catalog"
	"github.com/merchantry/backend/internal/domain/customer"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/returns"
	"github.com/merchantry/backend/internal/domain/shared"
)

type returnEnv struct {
	fixture   *apptest.Fixture
	svc       *Service
	orders    *orderapp.Service
	purchases *purchaseapp.Service
	tenantID  uuid.UUID
	productID uuid.UUID
	invoiceID uuid.UUID
	customer  *customer.Customer
}

// newReturnEnv stocks 10 units at cost 100 through a supplier invoice and
// leaves a customer with a 150 advance balance.
func newReturnEnv(t *testing.T) *returnEnv {
	t.Helper()
	fixture := apptest.NewFixture()
	tenantID := uuid.New()
	ctx := context.Background()

	product, err := catalog.NewProduct(tenantID, "WIDGET", "Widget", "pcs")
	require.NoError(t, err)
	require.NoError(t, fixture.ProductRepo.Save(ctx, product))

	purchases := purchaseapp.NewService(fixture.Scope())
	invoice, err := purchases.RecordInvoice(ctx, tenantID, purchaseapp.RecordInvoiceRequest{
		InvoiceNumber: "SUP-100",
		SupplierName:  "Mills & Co",
		Items: []purchaseapp.RecordInvoiceItemInput{
			{ProductID: product.ID, Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)

	cust, err := customer.NewCustomer(tenantID, "Amina", "0555-0101")
	require.NoError(t, err)
	require.NoError(t, cust.CreditAdvance(decimal.NewFromInt(150)))
	require.NoError(t, fixture.CustomerRepo.Save(ctx, cust))

	return &returnEnv{
		fixture:   fixture,
		svc:       NewService(fixture.Scope()),
		orders:    orderapp.NewService(fixture.Scope(), true),
		purchases: purchases,
		tenantID:  tenantID,
		productID: product.ID,
		invoiceID: invoice.ID,
		customer:  cust,
	}
}

// dispatchOrder runs an order for two units at 500 with 200 shipping through
// submit, confirm and dispatch, and returns it with its line ID.
func (e *returnEnv) dispatchOrder(t *testing.T) (*order.Order, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	customerID := e.customer.ID
	submitted, err := e.orders.Submit(ctx, e.tenantID, orderapp.SubmitOrderRequest{
		CustomerID:      &customerID,
		CustomerName:    e.customer.Name,
		ShippingCharges: decimal.NewFromInt(200),
		Items: []orderapp.SubmitOrderItemInput{
			{ProductID: e.productID, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)
	_, err = e.orders.Confirm(ctx, e.tenantID, submitted.ID)
	require.NoError(t, err)
	_, err = e.orders.Dispatch(ctx, e.tenantID, submitted.ID, orderapp.DispatchOrderRequest{})
	require.NoError(t, err)

	o, err := e.fixture.OrderRepo.FindByID(ctx, e.tenantID, submitted.ID)
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	return o, o.Items[0].ID
}

func (e *returnEnv) balance(code string) decimal.Decimal {
	return e.fixture.AccountBalance(e.tenantID, code)
}

func TestService_CustomerReturn_FullRefund(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	o, itemID := env.dispatchOrder(t)

	created, err := env.svc.Create(ctx, env.tenantID, CreateReturnRequest{
		Type:           returns.ReturnTypeCustomerFull,
		OrderID:        &o.ID,
		ShippingPolicy: returns.ShippingPolicyFullRefund,
		Items: []CreateReturnItemInput{
			{ProductID: env.productID, OrderItemID: &itemID, Quantity: decimal.NewFromInt(2)},
		},
		Reason: "damaged in transit",
	})
	require.NoError(t, err)
	assert.Equal(t, returns.ReturnStatusPending, created.Status)
	assert.True(t, created.ProductsValue.Equal(decimal.NewFromInt(1000)))
	// opening the return has no effect yet
	assert.True(t, env.balance(ledger.AccountCodeSalesReturns).IsZero())

	approved, err := env.svc.Approve(ctx, env.tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, returns.ReturnStatusApproved, approved.Status)
	// full refund includes the original shipping charge
	assert.True(t, approved.RefundAmount.Equal(decimal.NewFromInt(1200)))

	assert.True(t, env.balance(ledger.AccountCodeSalesReturns).Equal(decimal.NewFromInt(1200)))
	assert.True(t, env.balance(ledger.AccountCodeAR).IsZero())

	// returned units go back to their batch
	product, err := env.fixture.ProductRepo.FindByID(ctx, env.tenantID, env.productID)
	require.NoError(t, err)
	assert.True(t, product.CurrentQuantity.Equal(decimal.NewFromInt(10)))
	batches, err := env.fixture.BatchRepo.FindForProduct(ctx, env.tenantID, env.productID, nil)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.True(t, batches[0].QuantitySold.IsZero())

	refunded, err := env.svc.ProcessRefund(ctx, env.tenantID, created.ID, ProcessRefundRequest{Method: returns.RefundMethodCash})
	require.NoError(t, err)
	assert.Equal(t, returns.ReturnStatusRefunded, refunded.Status)
	assert.Equal(t, returns.RefundMethodCash, refunded.RefundMethod)

	// cash paid out; customer payment collection is not modeled here, so the
	// receivable is reinstated by the settlement
	assert.True(t, env.balance(ledger.AccountCodeCash).Equal(decimal.NewFromInt(-1200)))

	updated, err := env.fixture.OrderRepo.FindByID(ctx, env.tenantID, o.ID)
	require.NoError(t, err)
	assert.True(t, updated.RefundAmount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, order.ReturnStatusFull, updated.ReturnStatus)
}

func TestService_CustomerReturn_DeductShippingFromAdvance(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	o, itemID := env.dispatchOrder(t)

	created, err := env.svc.Create(ctx, env.tenantID, CreateReturnRequest{
		Type:           returns.ReturnTypeCustomerPartial,
		OrderID:        &o.ID,
		ShippingPolicy: returns.ShippingPolicyDeductFromAdvance,
		Items: []CreateReturnItemInput{
			{ProductID: env.productID, OrderItemID: &itemID, Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)

	approved, err := env.svc.Approve(ctx, env.tenantID, created.ID)
	require.NoError(t, err)

	// shipping 200 against an advance of 150: 150 drawn, the 50 shortfall
	// comes off the cash refund
	assert.True(t, approved.RefundAmount.Equal(decimal.NewFromInt(950)))
	assert.True(t, env.customer.AdvanceBalance.IsZero())
	assert.True(t, env.balance(ledger.AccountCodeCustomerAdvance).Equal(decimal.NewFromInt(-150)))
	assert.True(t, env.balance(ledger.AccountCodeSalesReturns).Equal(decimal.NewFromInt(1000)))
}

func TestService_CustomerReturn_RefundToAdvance(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	o, itemID := env.dispatchOrder(t)

	created, err := env.svc.Create(ctx, env.tenantID, CreateReturnRequest{
		Type:           returns.ReturnTypeCustomerPartial,
		OrderID:        &o.ID,
		ShippingPolicy: returns.ShippingPolicyCustomerPays,
		Items: []CreateReturnItemInput{
			{ProductID: env.productID, OrderItemID: &itemID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)

	// customer pays shipping: 500 products minus 200 shipping
	approved, err := env.svc.Approve(ctx, env.tenantID, created.ID)
	require.NoError(t, err)
	assert.True(t, approved.RefundAmount.Equal(decimal.NewFromInt(300)))

	_, err = env.svc.ProcessRefund(ctx, env.tenantID, created.ID, ProcessRefundRequest{Method: returns.RefundMethodAdvance})
	require.NoError(t, err)

	// the refund lands on the customer's advance balance instead of cash
	assert.True(t, env.customer.AdvanceBalance.Equal(decimal.NewFromInt(450)))
	assert.True(t, env.balance(ledger.AccountCodeCash).IsZero())

	updated, err := env.fixture.OrderRepo.FindByID(ctx, env.tenantID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ReturnStatusPartial, updated.ReturnStatus)
}

func TestService_SupplierReturn(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()

	batches, err := env.fixture.BatchRepo.FindForProduct(ctx, env.tenantID, env.productID, nil)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	batchID := batches[0].ID

	created, err := env.svc.Create(ctx, env.tenantID, CreateReturnRequest{
		Type:              returns.ReturnTypeSupplier,
		PurchaseInvoiceID: &env.invoiceID,
		Items: []CreateReturnItemInput{
			{ProductID: env.productID, BatchID: &batchID, Quantity: decimal.NewFromInt(4)},
		},
		Reason: "wrong color",
	})
	require.NoError(t, err)
	assert.True(t, created.ProductsValue.Equal(decimal.NewFromInt(400)))

	approved, err := env.svc.Approve(ctx, env.tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, returns.ReturnStatusApproved, approved.Status)

	// the batch shrinks and stock leaves with it
	batch, err := env.fixture.BatchRepo.FindByID(ctx, env.tenantID, batchID)
	require.NoError(t, err)
	assert.True(t, batch.QuantityReceived.Equal(decimal.NewFromInt(6)))
	product, err := env.fixture.ProductRepo.FindByID(ctx, env.tenantID, env.productID)
	require.NoError(t, err)
	assert.True(t, product.CurrentQuantity.Equal(decimal.NewFromInt(6)))

	// payable released: 1000 invoiced minus 400 returned
	assert.True(t, env.balance(ledger.AccountCodeAP).Equal(decimal.NewFromInt(600)))
	inv, err := env.fixture.InvoiceRepo.FindByID(ctx, env.tenantID, env.invoiceID)
	require.NoError(t, err)
	assert.True(t, inv.ReturnedAmount.Equal(decimal.NewFromInt(400)))
	assert.True(t, inv.OutstandingPayable().Equal(decimal.NewFromInt(600)))

	// supplier returns settle at approval, there is no refund step
	_, err = env.svc.ProcessRefund(ctx, env.tenantID, created.ID, ProcessRefundRequest{Method: returns.RefundMethodCash})
	require.Error(t, err)
}

func TestService_Create_RejectsPendingOrder(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()

	submitted, err := env.orders.Submit(ctx, env.tenantID, orderapp.SubmitOrderRequest{
		CustomerName: "Amina",
		Items: []orderapp.SubmitOrderItemInput{
			{ProductID: env.productID, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)

	o, err := env.fixture.OrderRepo.FindByID(ctx, env.tenantID, submitted.ID)
	require.NoError(t, err)
	itemID := o.Items[0].ID

	_, err = env.svc.Create(ctx, env.tenantID, CreateReturnRequest{
		Type:           returns.ReturnTypeCustomerFull,
		OrderID:        &submitted.ID,
		ShippingPolicy: returns.ShippingPolicyFullRefund,
		Items: []CreateReturnItemInput{
			{ProductID: env.productID, OrderItemID: &itemID, Quantity: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestService_Reject(t *testing.T) {
	env := newReturnEnv(t)
	ctx := context.Background()
	o, itemID := env.dispatchOrder(t)

	created, err := env.svc.Create(ctx, env.tenantID, CreateReturnRequest{
		Type:           returns.ReturnTypeCustomerFull,
		OrderID:        &o.ID,
		ShippingPolicy: returns.ShippingPolicyFullRefund,
		Items: []CreateReturnItemInput{
			{ProductID: env.productID, OrderItemID: &itemID, Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)

	rejected, err := env.svc.Reject(ctx, env.tenantID, created.ID, RejectReturnRequest{Reason: "outside the return window"})
	require.NoError(t, err)
	assert.Equal(t, returns.ReturnStatusRejected, rejected.Status)
	assert.True(t, env.balance(ledger.AccountCodeSalesReturns).IsZero())

	// terminal: cannot approve afterwards
	_, err = env.svc.Approve(ctx, env.tenantID, created.ID)
	require.Error(t, err)
}
