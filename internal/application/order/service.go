package order

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
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/logistics"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/telemetry"
)

// Service owns the order state machine. Every transition runs inside one
// transaction scope spanning the order row, inventory mutations and ledger
// postings, and is serialized per order by optimistic locking.
type Service struct {
	scope unitofwork.TransactionScope
	// blockOnInsufficientStock makes confirm fail when FIFO batches cannot
	// cover a line. When disabled, stock may go negative and the shortfall
	// is costed at the product's last purchase price.
	blockOnInsufficientStock bool
	eventPublisher           shared.EventPublisher
}

// NewService creates a new order Service
func NewService(scope unitofwork.TransactionScope, blockOnInsufficientStock bool) *Service {
	return &Service{
		scope:                    scope,
		blockOnInsufficientStock: blockOnInsufficientStock,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Submit creates a new order in PENDING status with its pricing snapshot.
// Submission has no ledger or inventory effect.
func (s *Service) Submit(ctx context.Context, tenantID uuid.UUID, req SubmitOrderRequest) (*OrderResponse, error) {
	orderNumber := req.OrderNumber
	if orderNumber == "" {
		orderNumber = generateOrderNumber()
	}

	o, err := order.NewOrder(tenantID, orderNumber, req.CustomerName, req.ShippingCharges, req.PaymentAmount)
	if err != nil {
		return nil, err
	}
	if err := o.SetCustomerContact(req.CustomerID, req.CustomerPhone, req.DeliveryAddress); err != nil {
		return nil, err
	}
	if req.LogisticsCompanyID != nil {
		if err := o.SetLogisticsCompany(*req.LogisticsCompanyID); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		for _, input := range req.Items {
			product, err := repos.Products().FindByID(ctx, tenantID, input.ProductID)
			if err != nil {
				return err
			}
			if !product.IsActive() {
				return shared.NewDomainError("PRODUCT_INACTIVE", "Product is not available for sale: "+product.Code)
			}
			if _, err := o.AddItem(input.ProductID, input.VariantID, product.Name, input.Quantity, input.UnitPrice); err != nil {
				return err
			}
		}
		return repos.Orders().Save(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// Confirm transitions PENDING -> CONFIRMED: allocates inventory for every
// line in FIFO order, fixes the COGS basis on the line snapshots and posts
// the revenue transaction against Accounts Receivable.
func (s *Service) Confirm(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "order.confirm",
		telemetry.Stringer("order_id", orderID))
	defer span.End()

	var o *order.Order
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := o.Confirm(); err != nil {
			return err
		}

		costing := invapp.NewCosting(repos.Products(), repos.Batches(), repos.Allocations(), s.blockOnInsufficientStock)
		for i := range o.Items {
			item := &o.Items[i]
			result, err := costing.Allocate(ctx, tenantID, item.ProductID, item.VariantID, item.Quantity, &o.ID)
			if err != nil {
				return err
			}
			item.RecordCostBasis(result.WeightedAverageCost, result.TotalCost)
		}

		poster := ledgerapp.NewPoster(repos.Accounts(), repos.Transactions())
		if err := s.postRevenue(ctx, poster, o); err != nil {
			return err
		}

		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// Dispatch transitions CONFIRMED -> DISPATCHED: computes the COD fee from
// the courier's configuration, posts the fee entries and, when the actual
// shipping cost is already known, opens the first variance episode.
func (s *Service) Dispatch(ctx context.Context, tenantID, orderID uuid.UUID, req DispatchOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "order.dispatch",
		telemetry.Stringer("order_id", orderID))
	defer span.End()

	var o *order.Order
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if req.LogisticsCompanyID != nil {
			if err := o.SetLogisticsCompany(*req.LogisticsCompanyID); err != nil {
				return err
			}
		}

		codFee := decimal.Zero
		feeType := logistics.CodFeeTypeFixed
		paidBy := logistics.CodFeePaidByBusinessOwner
		if o.LogisticsCompanyID != nil {
			company, err := repos.Companies().FindByID(ctx, tenantID, *o.LogisticsCompanyID)
			if err != nil {
				return err
			}
			codAmount := logistics.CalculateCodAmount(o.ProductsTotal, o.ShippingCharges, o.PaymentAmount)
			feeResult, err := logistics.CalculateCodFee(company.FeeConfig(), codAmount)
			if err != nil {
				return err
			}
			codFee = feeResult.Fee
			feeType = feeResult.CalculationType
			paidBy = company.CodFeePaidBy
		}

		if err := o.Dispatch(codFee, feeType, paidBy); err != nil {
			return err
		}

		poster := ledgerapp.NewPoster(repos.Accounts(), repos.Transactions())
		if err := s.postCodFee(ctx, poster, o); err != nil {
			return err
		}

		if req.ActualShippingCost != nil {
			if err := o.AdjustShippingCost(*req.ActualShippingCost); err != nil {
				return err
			}
			if err := s.replaceVariancePosting(ctx, poster, o); err != nil {
				return err
			}
		}

		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// Complete transitions DISPATCHED -> COMPLETED with no further ledger effect
func (s *Service) Complete(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := o.Complete(); err != nil {
			return err
		}
		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// Cancel cancels a PENDING or CONFIRMED order. A confirmed cancellation
// restocks every allocation and reverses the revenue posting.
func (s *Service) Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		wasConfirmed := o.Status == order.OrderStatusConfirmed
		if err := o.Cancel(req.Reason); err != nil {
			return err
		}

		if wasConfirmed {
			costing := invapp.NewCosting(repos.Products(), repos.Batches(), repos.Allocations(), s.blockOnInsufficientStock)
			if err := costing.RestockOrderAllocations(ctx, tenantID, o.ID); err != nil {
				return err
			}

			poster := ledgerapp.NewPoster(repos.Accounts(), repos.Transactions())
			_, err = poster.ReverseLatestUnreversed(ctx, tenantID, ledger.SourceTypeOrder, o.ID, ledger.EntryKindRevenue,
				fmt.Sprintf("Cancellation of order %s", o.OrderNumber))
			if err != nil {
				return err
			}
		}

		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// AdjustShippingCost records a courier cost correction on a dispatched or
// completed order. A prior variance posting is reversed before the new
// episode's entries are posted, so the ledger reflects only the final
// variance even when adjustments flip between income and expense.
func (s *Service) AdjustShippingCost(ctx context.Context, tenantID, orderID uuid.UUID, req AdjustShippingCostRequest) (*OrderResponse, error) {
	var o *order.Order
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		var err error
		o, err = repos.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := o.AdjustShippingCost(req.ActualShippingCost); err != nil {
			return err
		}

		poster := ledgerapp.NewPoster(repos.Accounts(), repos.Transactions())
		if err := s.replaceVariancePosting(ctx, poster, o); err != nil {
			return err
		}

		return repos.Orders().SaveWithLock(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, o)

	response := ToOrderResponse(o)
	return &response, nil
}

// GetByID retrieves an order
func (s *Service) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*OrderResponse, error) {
	var response OrderResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		o, err := repos.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		response = ToOrderResponse(o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByStatus retrieves orders in a status with pagination
func (s *Service) ListByStatus(ctx context.Context, tenantID uuid.UUID, status order.OrderStatus, limit, offset int) ([]OrderResponse, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var responses []OrderResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		orders, err := repos.Orders().FindByStatus(ctx, tenantID, status, limit, offset)
		if err != nil {
			return err
		}
		total, err = repos.Orders().CountByStatus(ctx, tenantID, status)
		if err != nil {
			return err
		}
		responses = make([]OrderResponse, len(orders))
		for i, o := range orders {
			responses[i] = ToOrderResponse(o)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// postRevenue posts the confirmation revenue: AR carries what the customer
// owes, split into product revenue and shipping revenue.
func (s *Service) postRevenue(ctx context.Context, poster *ledgerapp.Poster, o *order.Order) error {
	lines := make([]ledger.TransactionLine, 0, 3)

	receivable := o.ProductsTotal.Add(o.ShippingCharges)
	debitAR, err := ledger.DebitLine(ledger.AccountCodeAR, receivable, "Order "+o.OrderNumber)
	if err != nil {
		return err
	}
	lines = append(lines, *debitAR)

	creditSales, err := ledger.CreditLine(ledger.AccountCodeSales, o.ProductsTotal, "Products on order "+o.OrderNumber)
	if err != nil {
		return err
	}
	lines = append(lines, *creditSales)

	if o.ShippingCharges.GreaterThan(decimal.Zero) {
		creditShipping, err := ledger.CreditLine(ledger.AccountCodeShippingRevenue, o.ShippingCharges, "Shipping on order "+o.OrderNumber)
		if err != nil {
			return err
		}
		lines = append(lines, *creditShipping)
	}

	orderID := o.ID
	txn, err := ledger.NewTransaction(o.TenantID, time.Now(),
		fmt.Sprintf("Revenue for order %s", o.OrderNumber),
		ledger.SourceTypeOrder, &orderID, ledger.EntryKindRevenue, lines)
	if err != nil {
		return err
	}
	return poster.Post(ctx, txn)
}

// postCodFee posts the dispatch-time COD fee entries. The business always
// owes the fee to the courier; when the customer bears it, the same amount
// is also recognized as receivable revenue.
func (s *Service) postCodFee(ctx context.Context, poster *ledgerapp.Poster, o *order.Order) error {
	if o.CodFee.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	lines := make([]ledger.TransactionLine, 0, 4)

	debitExpense, err := ledger.DebitLine(ledger.AccountCodeCodFeeExpense, o.CodFee, "COD fee on order "+o.OrderNumber)
	if err != nil {
		return err
	}
	creditAP, err := ledger.CreditLine(ledger.AccountCodeAP, o.CodFee, "COD fee owed to courier")
	if err != nil {
		return err
	}
	lines = append(lines, *debitExpense, *creditAP)

	if o.CodFeePaidBy == logistics.CodFeePaidByCustomer {
		debitAR, err := ledger.DebitLine(ledger.AccountCodeAR, o.CodFee, "COD fee charged to customer")
		if err != nil {
			return err
		}
		creditRevenue, err := ledger.CreditLine(ledger.AccountCodeCodFeeRevenue, o.CodFee, "COD fee revenue on order "+o.OrderNumber)
		if err != nil {
			return err
		}
		lines = append(lines, *debitAR, *creditRevenue)
	}

	orderID := o.ID
	txn, err := ledger.NewTransaction(o.TenantID, time.Now(),
		fmt.Sprintf("COD fee for order %s", o.OrderNumber),
		ledger.SourceTypeOrder, &orderID, ledger.EntryKindCodFee, lines)
	if err != nil {
		return err
	}
	return poster.Post(ctx, txn)
}

// replaceVariancePosting implements the variance replace-episode protocol:
// reverse the previous unreversed variance posting, then post the current
// episode's entries unless the new variance is zero.
func (s *Service) replaceVariancePosting(ctx context.Context, poster *ledgerapp.Poster, o *order.Order) error {
	_, err := poster.ReverseLatestUnreversed(ctx, o.TenantID, ledger.SourceTypeOrder, o.ID, ledger.EntryKindShippingVariance,
		fmt.Sprintf("Superseded shipping variance for order %s", o.OrderNumber))
	if err != nil {
		return err
	}

	if o.ShippingVariance == nil || o.ShippingVariance.IsZero() {
		return nil
	}

	variance := *o.ShippingVariance
	magnitude := variance.Abs()
	doubled := magnitude.Add(magnitude)
	lines := make([]ledger.TransactionLine, 0, 3)

	if variance.IsNegative() {
		// cost overran the estimate: recognize extra shipping expense and
		// the variance expense, both owed to the courier
		debitShipping, err := ledger.DebitLine(ledger.AccountCodeShippingExpense, magnitude, "Shipping cost overrun on order "+o.OrderNumber)
		if err != nil {
			return err
		}
		debitVariance, err := ledger.DebitLine(ledger.AccountCodeVarianceExpense, magnitude, "Shipping variance on order "+o.OrderNumber)
		if err != nil {
			return err
		}
		creditAP, err := ledger.CreditLine(ledger.AccountCodeAP, doubled, "Owed to courier for order "+o.OrderNumber)
		if err != nil {
			return err
		}
		lines = append(lines, *debitShipping, *debitVariance, *creditAP)
	} else {
		// cost came in under the estimate: release the payable and book
		// the saving as variance income
		debitAP, err := ledger.DebitLine(ledger.AccountCodeAP, doubled, "Courier payable released for order "+o.OrderNumber)
		if err != nil {
			return err
		}
		creditShipping, err := ledger.CreditLine(ledger.AccountCodeShippingExpense, magnitude, "Shipping cost saving on order "+o.OrderNumber)
		if err != nil {
			return err
		}
		creditVariance, err := ledger.CreditLine(ledger.AccountCodeVarianceIncome, magnitude, "Shipping variance on order "+o.OrderNumber)
		if err != nil {
			return err
		}
		lines = append(lines, *debitAP, *creditShipping, *creditVariance)
	}

	orderID := o.ID
	txn, err := ledger.NewTransaction(o.TenantID, time.Now(),
		fmt.Sprintf("Shipping variance for order %s", o.OrderNumber),
		ledger.SourceTypeOrder, &orderID, ledger.EntryKindShippingVariance, lines)
	if err != nil {
		return err
	}
	txn.VarianceEpisode = o.VarianceEpisode

	return poster.Post(ctx, txn)
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	for _, event := range o.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	o.ClearDomainEvents()
}

func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
