package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/ledger"
)

// PostTransactionLineInput is one line of a manual posting request
type PostTransactionLineInput struct {
	AccountCode  string          `json:"account_code" binding:"required,min=1,max=50"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Description  string          `json:"description" binding:"max=500"`
}

// PostTransactionRequest represents a request to post a manual transaction
type PostTransactionRequest struct {
	TransactionDate *time.Time                 `json:"transaction_date"`
	Description     string                     `json:"description" binding:"required,min=1,max=500"`
	Lines           []PostTransactionLineInput `json:"lines" binding:"required,min=2,dive"`
}

// TransactionLineResponse is one line of a posted transaction
type TransactionLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	AccountCode  string          `json:"account_code"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Description  string          `json:"description,omitempty"`
}

// TransactionResponse represents a posted transaction
type TransactionResponse struct {
	ID                    uuid.UUID                 `json:"id"`
	TransactionDate       time.Time                 `json:"transaction_date"`
	Description           string                    `json:"description"`
	SourceType            ledger.SourceType         `json:"source_type"`
	SourceID              *uuid.UUID                `json:"source_id,omitempty"`
	EntryKind             ledger.EntryKind          `json:"entry_kind"`
	VarianceEpisode       int                       `json:"variance_episode,omitempty"`
	ReversesTransactionID *uuid.UUID                `json:"reverses_transaction_id,omitempty"`
	TotalDebit            decimal.Decimal           `json:"total_debit"`
	TotalCredit           decimal.Decimal           `json:"total_credit"`
	Lines                 []TransactionLineResponse `json:"lines"`
	CreatedAt             time.Time                 `json:"created_at"`
}

// ToTransactionResponse maps a transaction to its response
func ToTransactionResponse(txn *ledger.Transaction) TransactionResponse {
	lines := make([]TransactionLineResponse, len(txn.Lines))
	for i, line := range txn.Lines {
		lines[i] = TransactionLineResponse{
			ID:           line.ID,
			AccountID:    line.AccountID,
			AccountCode:  line.AccountCode,
			DebitAmount:  line.DebitAmount,
			CreditAmount: line.CreditAmount,
			Description:  line.Description,
		}
	}
	return TransactionResponse{
		ID:                    txn.ID,
		TransactionDate:       txn.TransactionDate,
		Description:           txn.Description,
		SourceType:            txn.SourceType,
		SourceID:              txn.SourceID,
		EntryKind:             txn.EntryKind,
		VarianceEpisode:       txn.VarianceEpisode,
		ReversesTransactionID: txn.ReversesTransactionID,
		TotalDebit:            txn.TotalDebit(),
		TotalCredit:           txn.TotalCredit(),
		Lines:                 lines,
		CreatedAt:             txn.CreatedAt,
	}
}

// AccountResponse represents a chart-of-accounts entry
type AccountResponse struct {
	ID        uuid.UUID          `json:"id"`
	Code      string             `json:"code"`
	Name      string             `json:"name"`
	Type      ledger.AccountType `json:"type"`
	Balance   decimal.Decimal    `json:"balance"`
	CreatedAt time.Time          `json:"created_at"`
}

// ToAccountResponse maps an account to its response
func ToAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Type:      a.Type,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}
