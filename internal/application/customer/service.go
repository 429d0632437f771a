package customer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	ledgerapp "github.com/merchantry/backend/internal/application/ledger"
	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/customer"
	"github.com/merchantry/backend/internal/domain/ledger"
)

// Service manages customers and their prepaid advance balances. The
// advance is mirrored in the ledger as the CUSTOMER_ADVANCE liability;
// the per-customer field is the breakdown refunds draw down.
type Service struct {
	scope unitofwork.TransactionScope
}

// NewService creates a new customer Service
func NewService(scope unitofwork.TransactionScope) *Service {
	return &Service{scope: scope}
}

// Create registers a new customer
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	c, err := customer.NewCustomer(tenantID, req.Name, req.Phone)
	if err != nil {
		return nil, err
	}
	c.Address = req.Address

	err = s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		return repos.Customers().Save(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(c)
	return &response, nil
}

// GetByID retrieves a customer
func (s *Service) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	var response CustomerResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		c, err := repos.Customers().FindByID(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		response = ToCustomerResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// TopUpAdvance records a prepaid deposit: the customer's advance balance
// grows and the ledger books cash received against the advance liability.
func (s *Service) TopUpAdvance(ctx context.Context, tenantID, customerID uuid.UUID, req TopUpAdvanceRequest) (*CustomerResponse, error) {
	var response CustomerResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		c, err := repos.Customers().FindByID(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		if err := c.CreditAdvance(req.Amount); err != nil {
			return err
		}
		if err := repos.Customers().SaveWithLock(ctx, c); err != nil {
			return err
		}

		debit, err := ledger.DebitLine(ledger.AccountCodeCash, req.Amount, "Customer advance deposit")
		if err != nil {
			return err
		}
		credit, err := ledger.CreditLine(ledger.AccountCodeCustomerAdvance, req.Amount, "Customer advance deposit")
		if err != nil {
			return err
		}
		txn, err := ledger.NewTransaction(tenantID, time.Now(),
			fmt.Sprintf("Advance deposit from %s", c.Name),
			ledger.SourceTypeManual, nil, ledger.EntryKindManual,
			[]ledger.TransactionLine{*debit, *credit})
		if err != nil {
			return err
		}
		if err := ledgerapp.NewPoster(repos.Accounts(), repos.Transactions()).Post(ctx, txn); err != nil {
			return err
		}

		response = ToCustomerResponse(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
