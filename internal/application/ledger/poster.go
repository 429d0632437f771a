package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/shared"
)

// Poster posts transactions against repositories bound to the caller's
// transaction scope. Order, return and purchase services construct one
// inside their unit of work so ledger effects commit atomically with the
// document that caused them.
type Poster struct {
	accounts ledger.AccountRepository
	txns     ledger.TransactionRepository
}

// NewPoster creates a Poster over scope-bound repositories
func NewPoster(accounts ledger.AccountRepository, txns ledger.TransactionRepository) *Poster {
	return &Poster{accounts: accounts, txns: txns}
}

// ResolveAccount finds the tenant's account for a code, creating it with
// the default type on first use. The tenant+code unique constraint is
// enforced by storage, so a concurrent first-use race resolves to a
// single row: the loser of the insert re-reads the winner's account.
func (p *Poster) ResolveAccount(ctx context.Context, tenantID uuid.UUID, code string) (*ledger.Account, error) {
	account, err := p.accounts.FindByCode(ctx, tenantID, code)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	account, err = ledger.NewAccount(tenantID, code, "", ledger.DefaultAccountType(code))
	if err != nil {
		return nil, err
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return p.accounts.FindByCode(ctx, tenantID, code)
		}
		return nil, err
	}
	return account, nil
}

// Post validates and persists a transaction, then applies each line to its
// account's running balance atomically. Lines reference accounts by code;
// missing accounts are created on first use.
func (p *Poster) Post(ctx context.Context, txn *ledger.Transaction) error {
	if txn == nil {
		return shared.NewDomainError("INVALID_TRANSACTION", "Transaction cannot be nil")
	}
	if !txn.IsBalanced() {
		return shared.ErrUnbalancedTransaction
	}

	for i := range txn.Lines {
		account, err := p.ResolveAccount(ctx, txn.TenantID, txn.Lines[i].AccountCode)
		if err != nil {
			return err
		}
		txn.Lines[i].AccountID = account.ID

		delta := account.BalanceDelta(txn.Lines[i].DebitAmount, txn.Lines[i].CreditAmount)
		if err := p.accounts.AdjustBalance(ctx, txn.TenantID, account.ID, delta); err != nil {
			return err
		}
	}

	return p.txns.Save(ctx, txn)
}

// Reverse posts a reversal of the given transaction and returns it
func (p *Poster) Reverse(ctx context.Context, original *ledger.Transaction, description string) (*ledger.Transaction, error) {
	rev, err := original.Reversal(description)
	if err != nil {
		return nil, err
	}
	if err := p.Post(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// ReverseLatestUnreversed finds the most recent transaction of the given
// source and kind that has not yet been reversed, and reverses it. Returns
// nil, nil when there is nothing to reverse. This is the replace-episode
// primitive behind shipping-variance adjustments.
func (p *Poster) ReverseLatestUnreversed(ctx context.Context, tenantID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID, kind ledger.EntryKind, description string) (*ledger.Transaction, error) {
	candidates, err := p.txns.FindBySourceAndKind(ctx, tenantID, sourceType, sourceID, kind)
	if err != nil {
		return nil, err
	}

	for i := len(candidates) - 1; i >= 0; i-- {
		reversed, err := p.txns.ExistsReversalOf(ctx, tenantID, candidates[i].ID)
		if err != nil {
			return nil, err
		}
		if reversed {
			continue
		}
		return p.Reverse(ctx, &candidates[i], description)
	}
	return nil, nil
}
