package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/application/unitofwork"
	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/shared"
)

// Service exposes the ledger engine's external operations: manual postings
// and chart-of-accounts queries. Lifecycle postings made by the order and
// return services use Poster directly inside their own transaction scope.
type Service struct {
	scope          unitofwork.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewService creates a new ledger Service
func NewService(scope unitofwork.TransactionScope) *Service {
	return &Service{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PostTransaction posts a manual balanced transaction
func (s *Service) PostTransaction(ctx context.Context, tenantID uuid.UUID, req PostTransactionRequest) (*TransactionResponse, error) {
	lines := make([]ledger.TransactionLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		line, err := ledger.NewTransactionLine(input.AccountCode, input.DebitAmount, input.CreditAmount, input.Description)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}

	date := time.Now()
	if req.TransactionDate != nil {
		date = *req.TransactionDate
	}

	txn, err := ledger.NewTransaction(tenantID, date, req.Description, ledger.SourceTypeManual, nil, ledger.EntryKindManual, lines)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		return NewPoster(repos.Accounts(), repos.Transactions()).Post(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, txn)

	response := ToTransactionResponse(txn)
	return &response, nil
}

// GetTransaction retrieves a posted transaction
func (s *Service) GetTransaction(ctx context.Context, tenantID, txnID uuid.UUID) (*TransactionResponse, error) {
	var response TransactionResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		txn, err := repos.Transactions().FindByID(ctx, tenantID, txnID)
		if err != nil {
			return err
		}
		response = ToTransactionResponse(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListAccounts returns the tenant's chart of accounts
func (s *Service) ListAccounts(ctx context.Context, tenantID uuid.UUID) ([]AccountResponse, error) {
	var responses []AccountResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		accounts, err := repos.Accounts().FindAllForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		responses = make([]AccountResponse, len(accounts))
		for i, a := range accounts {
			responses[i] = ToAccountResponse(&a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetAccount returns one account by code
func (s *Service) GetAccount(ctx context.Context, tenantID uuid.UUID, code string) (*AccountResponse, error) {
	var response AccountResponse
	err := s.scope.Execute(ctx, func(repos unitofwork.Repositories) error {
		account, err := repos.Accounts().FindByCode(ctx, tenantID, code)
		if err != nil {
			return err
		}
		response = ToAccountResponse(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// SourceAccountBalance computes the net effect of one source document's
// transactions on a single account. The supplier-return invariant checks
// the payable this way instead of trusting the running balance alone.
func SourceAccountBalance(ctx context.Context, txns ledger.TransactionRepository, tenantID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID, accountCode string, accountType ledger.AccountType) (decimal.Decimal, error) {
	posted, err := txns.FindBySource(ctx, tenantID, sourceType, sourceID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, txn := range posted {
		for _, line := range txn.Lines {
			if line.AccountCode != accountCode {
				continue
			}
			switch accountType {
			case ledger.AccountTypeIncome, ledger.AccountTypeLiability, ledger.AccountTypeEquity:
				balance = balance.Add(line.CreditAmount).Sub(line.DebitAmount)
			default:
				balance = balance.Add(line.DebitAmount).Sub(line.CreditAmount)
			}
		}
	}
	return balance, nil
}

func (s *Service) publishEvents(ctx context.Context, txn *ledger.Transaction) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range txn.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	txn.ClearDomainEvents()
}
