package returns

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invapp "github.com/merchantry/backend/internal/application/inventory"
	ledgerapp "github.com/merchantry/backend/internal/application/ledger"
	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/customer"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/returns"
	"github.com/merchantry/backend/internal/domain/shared"
)

// Service orchestrates the return lifecycle. A customer return reverses an
// order's revenue and restocks its allocations on approval, then settles the
// refund as a separate step. A supplier return sends stock back and reduces
// the outstanding payable to the supplier.
type Service struct {
	scope          unitofwork.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewService creates a new returns Service
func NewService(scope unitofwork.TransactionScope) *Service {
	return &Service{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create opens a return in PENDING status. Customer returns require a
// dispatched or completed order and reference its lines; supplier returns
// reference a purchase invoice and the batches the stock came from. No
// ledger or inventory effect until approval.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateReturnRequest) (*ReturnResponse, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_RETURN_TYPE", "Unknown return type: "+string(req.Type))
	}

	var r *returns.Return
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		if req.Type.IsCustomer() {
			r, err = s.buildCustomerReturn(ctx, repos, tenantID, req)
		} else {
			r, err = s.buildSupplierReturn(ctx, repos, tenantID, req)
		}
		if err != nil {
			return err
		}
		return repos.Returns().Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	response := ToReturnResponse(r)
	return &response, nil
}

// Approve moves a pending return to APPROVED and applies its business
// effects in one transaction. For a customer return: the refund is computed
// from the shipping policy, the revenue reversal is posted, any shipping
// share is drawn from the customer's advance and the returned quantities go
// back to their batches. For a supplier return: stock leaves the batches,
// the payable to the supplier is released and the invoice's outstanding
// payable is verified against the ledger.
func (s *Service) Approve(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	var r *returns.Return
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		r, err = repos.Returns().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}

		if r.Type.IsCustomer() {
			if err := s.approveCustomerReturn(ctx, repos, r); err != nil {
				return err
			}
		} else {
			if err := s.approveSupplierReturn(ctx, repos, r); err != nil {
				return err
			}
		}

		return repos.Returns().SaveWithLock(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, r)

	response := ToReturnResponse(r)
	return &response, nil
}

// Reject moves a pending return to REJECTED with no further effect
func (s *Service) Reject(ctx context.Context, tenantID, returnID uuid.UUID, req RejectReturnRequest) (*ReturnResponse, error) {
	var r *returns.Return
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		r, err = repos.Returns().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if err := r.Reject(req.Reason); err != nil {
			return err
		}
		return repos.Returns().SaveWithLock(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	response := ToReturnResponse(r)
	return &response, nil
}

// ProcessRefund settles an approved customer return: the refund is paid out
// of the chosen account, the order records the refunded amount and its
// return status, and the return reaches REFUNDED. Supplier returns settle at
// approval and never pass through here.
func (s *Service) ProcessRefund(ctx context.Context, tenantID, returnID uuid.UUID, req ProcessRefundRequest) (*ReturnResponse, error) {
	var r *returns.Return
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		r, err = repos.Returns().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		if !r.Type.IsCustomer() {
			return shared.NewDomainError("INVALID_RETURN_TYPE", "Supplier returns settle at approval")
		}
		if err := r.MarkRefunded(req.Method); err != nil {
			return err
		}

		if r.RefundAmount.GreaterThan(decimal.Zero) {
			poster := ledgerapp.NewPoster(repos.Accounts(), repos.Transactions())
			if err := s.postRefundSettlement(ctx, poster, r, req.Method); err != nil {
				return err
			}

			if req.Method == returns.RefundMethodAdvance && r.CustomerID != nil {
				cust, err := repos.Customers().FindByID(ctx, tenantID, *r.CustomerID)
				if err != nil {
					return err
				}
				if err := cust.CreditAdvance(r.RefundAmount); err != nil {
					return err
				}
				if err := repos.Customers().SaveWithLock(ctx, cust); err != nil {
					return err
				}
			}
		}

		o, err := repos.Orders().FindByID(ctx, tenantID, *r.OrderID)
		if err != nil {
			return err
		}
		if r.RefundAmount.GreaterThan(decimal.Zero) {
			if err := o.RecordRefund(r.RefundAmount, r.Type == returns.ReturnTypeCustomerFull); err != nil {
				return err
			}
			if err := repos.Orders().SaveWithLock(ctx, o); err != nil {
				return err
			}
		}

		return repos.Returns().SaveWithLock(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, r)

	response := ToReturnResponse(r)
	return &response, nil
}

// GetByID retrieves a return
func (s *Service) GetByID(ctx context.Context, tenantID, returnID uuid.UUID) (*ReturnResponse, error) {
	var response ReturnResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		r, err := repos.Returns().FindByID(ctx, tenantID, returnID)
		if err != nil {
			return err
		}
		response = ToReturnResponse(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByOrder retrieves all returns opened against an order
func (s *Service) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]ReturnResponse, error) {
	var responses []ReturnResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		found, err := repos.Returns().FindByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		responses = make([]ReturnResponse, len(found))
		for i, r := range found {
			responses[i] = ToReturnResponse(r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *Service) buildCustomerReturn(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, req CreateReturnRequest) (*returns.Return, error) {
	if req.OrderID == nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Customer return requires an order")
	}
	o, err := repos.Orders().FindByID(ctx, tenantID, *req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.OrderStatusDispatched && o.Status != order.OrderStatusCompleted {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot open a return against a %s order", o.Status))
	}

	r, err := returns.NewCustomerReturn(tenantID, generateReturnNumber(), req.Type, o.ID, o.CustomerID, req.ShippingPolicy, o.ShippingCharges, req.Reason)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Items {
		if input.OrderItemID == nil {
			return nil, shared.NewDomainError("INVALID_ITEM_REFERENCE", "Customer return items must reference an order line")
		}
		line, err := o.FindItemByID(*input.OrderItemID)
		if err != nil {
			return nil, err
		}
		if line.ProductID != input.ProductID {
			return nil, shared.NewDomainError("ITEM_MISMATCH", "Returned product does not match the order line")
		}
		if input.Quantity.GreaterThan(line.Quantity) {
			return nil, shared.NewDomainError("RETURN_EXCEEDS_ORDERED", "Cannot return more than was ordered")
		}
		if _, err := r.AddItem(input.ProductID, input.VariantID, input.OrderItemID, nil, input.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (s *Service) buildSupplierReturn(ctx context.Context, repos unitofwork.Repositories, tenantID uuid.UUID, req CreateReturnRequest) (*returns.Return, error) {
	if req.PurchaseInvoiceID == nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Supplier return requires a purchase invoice")
	}
	inv, err := repos.Invoices().FindByID(ctx, tenantID, *req.PurchaseInvoiceID)
	if err != nil {
		return nil, err
	}

	r, err := returns.NewSupplierReturn(tenantID, generateReturnNumber(), inv.ID, req.Reason)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Items {
		if input.BatchID == nil {
			return nil, shared.NewDomainError("INVALID_ITEM_REFERENCE", "Supplier return items must reference a purchase batch")
		}
		batch, err := repos.Batches().FindByID(ctx, tenantID, *input.BatchID)
		if err != nil {
			return nil, err
		}
		if batch.PurchaseInvoiceID == nil || *batch.PurchaseInvoiceID != inv.ID {
			return nil, shared.NewDomainError("ITEM_MISMATCH", "Batch does not belong to the purchase invoice")
		}
		if input.Quantity.GreaterThan(batch.RemainingQuantity()) {
			return nil, shared.NewDomainError("RETURN_EXCEEDS_REMAINING", "Cannot return more than remains in the batch")
		}
		if _, err := r.AddItem(input.ProductID, input.VariantID, nil, input.BatchID, input.Quantity, batch.UnitCost); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// approveCustomerReturn fixes the refund, posts the revenue reversal
// (SALES_RETURNS against AR, with the advance-drawn share moving from the
// customer's advance balance) and restocks every returned quantity.
func (s *Service) approveCustomerReturn(ctx context.Context, repos unitofwork.Repositories, r *returns.Return) error {
	advance := decimal.Zero
	var cust *customer.Customer
	if r.ShippingPolicy == returns.ShippingPolicyDeductFromAdvance && r.CustomerID != nil {
		var err error
		cust, err = repos.Customers().FindByID(ctx, r.TenantID, *r.CustomerID)
		if err != nil {
			return err
		}
		advance = cust.AdvanceBalance
	}

	cashRefund, advanceDrawn, err := r.ComputeRefund(advance)
	if err != nil {
		return err
	}
	if err := r.Approve(cashRefund); err != nil {
		return err
	}

	if advanceDrawn.GreaterThan(decimal.Zero) && cust != nil {
		drawn, err := cust.DrawAdvance(advanceDrawn)
		if err != nil {
			return err
		}
		advanceDrawn = drawn
		if err := repos.Customers().SaveWithLock(ctx, cust); err != nil {
			return err
		}
	}

	poster := ledgerapp.NewPoster(repos.Accounts(), repos.Transactions())
	if err := s.postReturnReversal(ctx, poster, r, advanceDrawn); err != nil {
		return err
	}

	costing := invapp.NewCosting(repos.Products(), repos.Batches(), repos.Allocations(), false)
	for _, item := range r.Items {
		if err := costing.RestockReturnedQuantity(ctx, r.TenantID, *r.OrderID, item.ProductID, item.VariantID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// approveSupplierReturn sends stock back to the supplier: each batch shrinks
// by the returned quantity, the payable to the supplier is released and the
// invoice's remaining payable is checked against the ledger balance.
func (s *Service) approveSupplierReturn(ctx context.Context, repos unitofwork.Repositories, r *returns.Return) error {
	inv, err := repos.Invoices().FindByID(ctx, r.TenantID, *r.PurchaseInvoiceID)
	if err != nil {
		return err
	}

	if err := r.Approve(r.ProductsValue); err != nil {
		return err
	}

	for _, item := range r.Items {
		batch, err := repos.Batches().FindByID(ctx, r.TenantID, *item.BatchID)
		if err != nil {
			return err
		}
		if err := batch.ReturnToSupplier(item.Quantity); err != nil {
			return err
		}
		if err := repos.Batches().Save(ctx, batch); err != nil {
			return err
		}
		if err := repos.Products().AdjustQuantity(ctx, r.TenantID, item.ProductID, item.VariantID, item.Quantity.Neg()); err != nil {
			return err
		}
	}

	if err := inv.RecordSupplierReturn(r.ProductsValue); err != nil {
		return err
	}

	poster := ledgerapp.NewPoster(repos.Accounts(), repos.Transactions())
	debitAP, err := ledger.DebitLine(ledger.AccountCodeAP, r.ProductsValue, "Stock returned on invoice "+inv.InvoiceNumber)
	if err != nil {
		return err
	}
	creditInventory, err := ledger.CreditLine(ledger.AccountCodeInventory, r.ProductsValue, "Stock returned on invoice "+inv.InvoiceNumber)
	if err != nil {
		return err
	}
	invoiceID := inv.ID
	txn, err := ledger.NewTransaction(r.TenantID, time.Now(),
		fmt.Sprintf("Supplier return %s against invoice %s", r.ReturnNumber, inv.InvoiceNumber),
		ledger.SourceTypePurchaseInvoice, &invoiceID, ledger.EntryKindSupplierReturn,
		[]ledger.TransactionLine{*debitAP, *creditInventory})
	if err != nil {
		return err
	}
	if err := poster.Post(ctx, txn); err != nil {
		return err
	}

	balance, err := ledgerapp.SourceAccountBalance(ctx, repos.Transactions(), r.TenantID,
		ledger.SourceTypePurchaseInvoice, inv.ID, ledger.AccountCodeAP, ledger.AccountTypeLiability)
	if err != nil {
		return err
	}
	if err := inv.VerifyPayable(balance); err != nil {
		return err
	}

	return repos.Invoices().SaveWithLock(ctx, inv)
}

// postReturnReversal posts the approval entries: returned value (plus the
// shipping charge under FULL_REFUND) moves from AR into the sales-returns
// contra account, and any advance-drawn shipping share releases the
// customer's advance balance against AR.
func (s *Service) postReturnReversal(ctx context.Context, poster *ledgerapp.Poster, r *returns.Return, advanceDrawn decimal.Decimal) error {
	reversed := r.ProductsValue
	if r.ShippingPolicy == returns.ShippingPolicyFullRefund {
		reversed = reversed.Add(r.ShippingCharges)
	}
	if reversed.LessThanOrEqual(decimal.Zero) && advanceDrawn.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	lines := make([]ledger.TransactionLine, 0, 4)
	if reversed.GreaterThan(decimal.Zero) {
		debitReturns, err := ledger.DebitLine(ledger.AccountCodeSalesReturns, reversed, "Return "+r.ReturnNumber)
		if err != nil {
			return err
		}
		creditAR, err := ledger.CreditLine(ledger.AccountCodeAR, reversed, "Return "+r.ReturnNumber)
		if err != nil {
			return err
		}
		lines = append(lines, *debitReturns, *creditAR)
	}
	if advanceDrawn.GreaterThan(decimal.Zero) {
		debitAdvance, err := ledger.DebitLine(ledger.AccountCodeCustomerAdvance, advanceDrawn, "Shipping drawn from advance for return "+r.ReturnNumber)
		if err != nil {
			return err
		}
		creditAR, err := ledger.CreditLine(ledger.AccountCodeAR, advanceDrawn, "Shipping drawn from advance for return "+r.ReturnNumber)
		if err != nil {
			return err
		}
		lines = append(lines, *debitAdvance, *creditAR)
	}

	returnID := r.ID
	txn, err := ledger.NewTransaction(r.TenantID, time.Now(),
		fmt.Sprintf("Reversal for return %s", r.ReturnNumber),
		ledger.SourceTypeReturn, &returnID, ledger.EntryKindReturnReversal, lines)
	if err != nil {
		return err
	}
	return poster.Post(ctx, txn)
}

// postRefundSettlement pays the approved refund out of the chosen account
func (s *Service) postRefundSettlement(ctx context.Context, poster *ledgerapp.Poster, r *returns.Return, method returns.RefundMethod) error {
	var accountCode string
	switch method {
	case returns.RefundMethodCash:
		accountCode = ledger.AccountCodeCash
	case returns.RefundMethodBank:
		accountCode = ledger.AccountCodeBank
	case returns.RefundMethodAdvance:
		accountCode = ledger.AccountCodeCustomerAdvance
	default:
		return shared.NewDomainError("INVALID_REFUND_METHOD", "Invalid refund method")
	}

	debitAR, err := ledger.DebitLine(ledger.AccountCodeAR, r.RefundAmount, "Refund for return "+r.ReturnNumber)
	if err != nil {
		return err
	}
	creditSettlement, err := ledger.CreditLine(accountCode, r.RefundAmount, "Refund for return "+r.ReturnNumber)
	if err != nil {
		return err
	}

	returnID := r.ID
	txn, err := ledger.NewTransaction(r.TenantID, time.Now(),
		fmt.Sprintf("Refund for return %s", r.ReturnNumber),
		ledger.SourceTypeReturn, &returnID, ledger.EntryKindRefund,
		[]ledger.TransactionLine{*debitAR, *creditSettlement})
	if err != nil {
		return err
	}
	return poster.Post(ctx, txn)
}

func (s *Service) publishEvents(ctx context.Context, r *returns.Return) {
	if s.eventPublisher == nil || r == nil {
		return
	}
	for _, event := range r.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	r.ClearDomainEvents()
}

func generateReturnNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("RET-%s-%s", time.Now().Format("20060102"), suffix)
}
