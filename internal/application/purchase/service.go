package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	ledgerapp "github.com/merchantry/backend/internal/application/ledger"
	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/inventory"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/purchase"
	"github.com/merchantry/backend/internal/domain/shared"
)

// Service records supplier invoices. Each recorded invoice seeds one FIFO
// purchase batch per line, lifts stock levels and posts the Accounts
// Payable transaction, all in one unit of work.
type Service struct {
	scope          unitofwork.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewService creates a new purchase Service
func NewService(scope unitofwork.TransactionScope) *Service {
	return &Service{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordInvoice records a supplier invoice: creates the invoice and its
// lines, seeds a purchase batch per line keyed by the invoice date,
// increments stock, rolls the products' last purchase price and posts
// debit Inventory / credit Accounts Payable for the total.
func (s *Service) RecordInvoice(ctx context.Context, tenantID uuid.UUID, req RecordInvoiceRequest) (*InvoiceResponse, error) {
	invoiceDate := time.Now()
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	inv, err := purchase.NewInvoice(tenantID, req.InvoiceNumber, req.SupplierName, invoiceDate)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		if existing, err := repos.Invoices().FindByInvoiceNumber(ctx, tenantID, req.InvoiceNumber); err == nil && existing != nil {
			return shared.ErrAlreadyExists
		}

		batches := make([]*inventory.PurchaseBatch, 0, len(req.Items))
		for _, input := range req.Items {
			item, err := inv.AddItem(input.ProductID, input.VariantID, input.Quantity, input.UnitCost)
			if err != nil {
				return err
			}

			invoiceID := inv.ID
			batch, err := inventory.NewPurchaseBatch(tenantID, input.ProductID, input.VariantID,
				fmt.Sprintf("%s/%d", inv.InvoiceNumber, len(batches)+1),
				invoiceDate, input.UnitCost, input.Quantity)
			if err != nil {
				return err
			}
			batch.PurchaseInvoiceID = &invoiceID
			batches = append(batches, batch)

			product, err := repos.Products().FindByID(ctx, tenantID, input.ProductID)
			if err != nil {
				return err
			}
			product.RecordPurchasePrice(input.UnitCost)
			if err := repos.Products().Save(ctx, product); err != nil {
				return err
			}
			if err := repos.Products().AdjustQuantity(ctx, tenantID, input.ProductID, input.VariantID, item.Quantity); err != nil {
				return err
			}
		}

		if err := repos.Batches().SaveAll(ctx, batches); err != nil {
			return err
		}
		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return err
		}

		if err := s.postPayable(ctx, ledgerapp.NewPoster(repos.Accounts(), repos.Transactions()), inv); err != nil {
			return err
		}

		inv.AddDomainEvent(purchase.NewInvoiceRecordedEvent(inv))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByID retrieves a purchase invoice
func (s *Service) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var response InvoiceResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		inv, err := repos.Invoices().FindByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		response = ToInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// VerifyPayableBalance checks the invoice payable invariant: the ledger's
// Accounts Payable effect for the invoice must equal total minus returns.
// Used to detect duplicate or erroneous supplier-return postings.
func (s *Service) VerifyPayableBalance(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		inv, err := repos.Invoices().FindByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		balance, err := ledgerapp.SourceAccountBalance(ctx, repos.Transactions(), tenantID,
			ledger.SourceTypePurchaseInvoice, inv.ID, ledger.AccountCodeAP, ledger.AccountTypeLiability)
		if err != nil {
			return err
		}
		return inv.VerifyPayable(balance)
	})
}

func (s *Service) publishEvents(ctx context.Context, inv *purchase.Invoice) {
	if s.eventPublisher == nil || inv == nil {
		return
	}
	for _, event := range inv.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	inv.ClearDomainEvents()
}

func (s *Service) postPayable(ctx context.Context, poster *ledgerapp.Poster, inv *purchase.Invoice) error {
	debitInventory, err := ledger.DebitLine(ledger.AccountCodeInventory, inv.TotalAmount, "Stock received on invoice "+inv.InvoiceNumber)
	if err != nil {
		return err
	}
	creditAP, err := ledger.CreditLine(ledger.AccountCodeAP, inv.TotalAmount, "Owed to "+inv.SupplierName)
	if err != nil {
		return err
	}

	invoiceID := inv.ID
	txn, err := ledger.NewTransaction(inv.TenantID, inv.InvoiceDate,
		fmt.Sprintf("Purchase invoice %s", inv.InvoiceNumber),
		ledger.SourceTypePurchaseInvoice, &invoiceID, ledger.EntryKindPurchase,
		[]ledger.TransactionLine{*debitInventory, *creditAP})
	if err != nil {
		return err
	}
	return poster.Post(ctx, txn)
}
