package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// SourceType identifies the business document a transaction originates from
type SourceType string

const (
	SourceTypeOrder           SourceType = "ORDER"
	SourceTypeReturn          SourceType = "RETURN"
	SourceTypePurchaseInvoice SourceType = "PURCHASE_INVOICE"
	SourceTypeManual          SourceType = "MANUAL"
)

// EntryKind tags what a transaction records within its source document's
// lifecycle. The shipping-variance replace protocol relies on this tag plus
// VarianceEpisode instead of matching description text.
type EntryKind string

const (
	EntryKindRevenue          EntryKind = "REVENUE"
	EntryKindCodFee           EntryKind = "COD_FEE"
	EntryKindShippingVariance EntryKind = "SHIPPING_VARIANCE"
	EntryKindReturnReversal   EntryKind = "RETURN_REVERSAL"
	EntryKindRefund           EntryKind = "REFUND"
	EntryKindSupplierReturn   EntryKind = "SUPPLIER_RETURN"
	EntryKindPurchase         EntryKind = "PURCHASE"
	EntryKindReversal         EntryKind = "REVERSAL"
	EntryKindManual           EntryKind = "MANUAL"
)

// TransactionLine is a single debit or credit against one account.
// Lines are immutable once the owning transaction is posted.
type TransactionLine struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	AccountCode   string
	DebitAmount   decimal.Decimal
	CreditAmount  decimal.Decimal
	Description   string
	CreatedAt     time.Time
}

// NewTransactionLine creates a line against an account code. Exactly one of
// debit/credit should be positive; both-zero lines are rejected at posting.
func NewTransactionLine(accountCode string, debit, credit decimal.Decimal, description string) (*TransactionLine, error) {
	if accountCode == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_CODE", "Transaction line account code cannot be empty")
	}
	if debit.IsNegative() || credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debit and credit amounts cannot be negative")
	}
	if debit.IsPositive() && credit.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "A line cannot carry both a debit and a credit")
	}

	return &TransactionLine{
		ID:           uuid.New(),
		AccountCode:  accountCode,
		DebitAmount:  debit,
		CreditAmount: credit,
		Description:  description,
		CreatedAt:    time.Now(),
	}, nil
}

// DebitLine creates a debit-only line
func DebitLine(accountCode string, amount decimal.Decimal, description string) (*TransactionLine, error) {
	return NewTransactionLine(accountCode, amount, decimal.Zero, description)
}

// CreditLine creates a credit-only line
func CreditLine(accountCode string, amount decimal.Decimal, description string) (*TransactionLine, error) {
	return NewTransactionLine(accountCode, decimal.Zero, amount, description)
}

// Transaction is an append-only double-entry posting owning at least two
// lines. Historical transactions are never edited; corrections are new
// transactions carrying ReversesTransactionID.
type Transaction struct {
	shared.TenantAggregateRoot
	TransactionDate time.Time
	Description     string
	SourceType      SourceType
	SourceID        *uuid.UUID
	EntryKind       EntryKind
	// VarianceEpisode numbers successive shipping-variance postings for a
	// single order so an adjustment can reverse exactly its predecessor.
	VarianceEpisode       int
	ReversesTransactionID *uuid.UUID
	Lines                 []TransactionLine
}

// NewTransaction builds a transaction and validates the double-entry
// invariant sum(debit) == sum(credit) across at least two lines.
func NewTransaction(tenantID uuid.UUID, date time.Time, description string, sourceType SourceType, sourceID *uuid.UUID, kind EntryKind, lines []TransactionLine) (*Transaction, error) {
	if len(lines) < 2 {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "A transaction requires at least two lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, line := range lines {
		if line.DebitAmount.IsZero() && line.CreditAmount.IsZero() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction line must carry a debit or a credit")
		}
		totalDebit = totalDebit.Add(line.DebitAmount)
		totalCredit = totalCredit.Add(line.CreditAmount)
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, shared.ErrUnbalancedTransaction
	}

	if date.IsZero() {
		date = time.Now()
	}

	txn := &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		TransactionDate:     date,
		Description:         description,
		SourceType:          sourceType,
		SourceID:            sourceID,
		EntryKind:           kind,
		Lines:               make([]TransactionLine, len(lines)),
	}
	for i := range lines {
		lines[i].TransactionID = txn.ID
		txn.Lines[i] = lines[i]
	}

	txn.AddDomainEvent(NewTransactionPostedEvent(txn))

	return txn, nil
}

// Reversal builds a new transaction that undoes this one: every line's debit
// and credit are swapped. The reversal references the original by ID.
func (t *Transaction) Reversal(description string) (*Transaction, error) {
	lines := make([]TransactionLine, len(t.Lines))
	for i, line := range t.Lines {
		lines[i] = TransactionLine{
			ID:           uuid.New(),
			AccountID:    line.AccountID,
			AccountCode:  line.AccountCode,
			DebitAmount:  line.CreditAmount,
			CreditAmount: line.DebitAmount,
			Description:  line.Description,
			CreatedAt:    time.Now(),
		}
	}

	rev, err := NewTransaction(t.TenantID, time.Now(), description, t.SourceType, t.SourceID, EntryKindReversal, lines)
	if err != nil {
		return nil, err
	}
	originalID := t.ID
	rev.ReversesTransactionID = &originalID
	rev.VarianceEpisode = t.VarianceEpisode
	return rev, nil
}

// TotalDebit returns the sum of all debit amounts
func (t *Transaction) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t.Lines {
		total = total.Add(line.DebitAmount)
	}
	return total
}

// TotalCredit returns the sum of all credit amounts
func (t *Transaction) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t.Lines {
		total = total.Add(line.CreditAmount)
	}
	return total
}

// IsBalanced reports whether debits equal credits
func (t *Transaction) IsBalanced() bool {
	return t.TotalDebit().Equal(t.TotalCredit())
}

// IsReversal reports whether this transaction reverses another
func (t *Transaction) IsReversal() bool {
	return t.ReversesTransactionID != nil
}
