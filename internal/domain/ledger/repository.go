package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository persists the per-tenant chart of accounts
type AccountRepository interface {
	// FindByCode finds an account by tenant and code
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	// FindByID finds an account by tenant and ID
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	// FindAllForTenant returns the full chart of accounts for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Account, error)
	// Create inserts a new account; returns shared.ErrAlreadyExists when the
	// tenant+code unique constraint is violated
	Create(ctx context.Context, account *Account) error
	// AdjustBalance atomically applies a signed delta to the running balance
	// (read-modify-write must not interleave across concurrent transactions)
	AdjustBalance(ctx context.Context, tenantID, accountID uuid.UUID, delta decimal.Decimal) error
}

// TransactionRepository persists append-only ledger transactions
type TransactionRepository interface {
	// Save appends a transaction and its lines; existing rows are never updated
	Save(ctx context.Context, txn *Transaction) error
	// FindByID finds a transaction with its lines
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)
	// FindBySource returns all transactions originating from a business document
	FindBySource(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID uuid.UUID) ([]Transaction, error)
	// FindBySourceAndKind returns transactions for a document filtered by entry kind,
	// ordered by variance episode then creation time ascending
	FindBySourceAndKind(ctx context.Context, tenantID uuid.UUID, sourceType SourceType, sourceID uuid.UUID, kind EntryKind) ([]Transaction, error)
	// FindByPeriod returns all transactions dated inside [from, to]
	FindByPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Transaction, error)
	// ExistsReversalOf reports whether a reversal referencing the transaction exists
	ExistsReversalOf(ctx context.Context, tenantID, transactionID uuid.UUID) (bool, error)
}
