package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/ledger"
)

// AccountModel is the persistence model for chart-of-accounts entries.
// The tenant+code unique index backs the get-or-create race handling in
// the ledger poster.
type AccountModel struct {
	TenantAggregateModel
	Code    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_account_tenant_code,priority:2"`
	Name    string          `gorm:"type:varchar(200);not null"`
	Type    string          `gorm:"type:varchar(20);not null"`
	Balance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "ledger_accounts"
}

// ToDomain converts the model to a domain account
func (m *AccountModel) ToDomain() *ledger.Account {
	account := &ledger.Account{
		Code:    m.Code,
		Name:    m.Name,
		Type:    ledger.AccountType(m.Type),
		Balance: m.Balance,
	}
	m.PopulateTenantAggregateRoot(&account.TenantAggregateRoot)
	return account
}

// AccountModelFromDomain converts a domain account to its persistence model
func AccountModelFromDomain(account *ledger.Account) *AccountModel {
	model := &AccountModel{
		Code:    account.Code,
		Name:    account.Name,
		Type:    string(account.Type),
		Balance: account.Balance,
	}
	model.FromDomainTenantAggregateRoot(account.TenantAggregateRoot)
	return model
}

// TransactionModel is the persistence model for ledger transactions.
// Rows are append-only; the repository never issues updates against them.
type TransactionModel struct {
	TenantAggregateModel
	TransactionDate       time.Time              `gorm:"not null;index"`
	Description           string                 `gorm:"type:varchar(500)"`
	SourceType            string                 `gorm:"type:varchar(30);not null;index:idx_txn_source"`
	SourceID              *uuid.UUID             `gorm:"type:uuid;index:idx_txn_source"`
	EntryKind             string                 `gorm:"type:varchar(30);not null"`
	VarianceEpisode       int                    `gorm:"not null;default:0"`
	ReversesTransactionID *uuid.UUID             `gorm:"type:uuid;index"`
	Lines                 []TransactionLineModel `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "ledger_transactions"
}

// TransactionLineModel is the persistence model for one debit or credit line
type TransactionLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountCode   string          `gorm:"type:varchar(50);not null"`
	DebitAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description   string          `gorm:"type:varchar(500)"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionLineModel) TableName() string {
	return "ledger_transaction_lines"
}

// ToDomain converts the model to a domain transaction with its lines
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	txn := &ledger.Transaction{
		TransactionDate:       m.TransactionDate,
		Description:           m.Description,
		SourceType:            ledger.SourceType(m.SourceType),
		SourceID:              m.SourceID,
		EntryKind:             ledger.EntryKind(m.EntryKind),
		VarianceEpisode:       m.VarianceEpisode,
		ReversesTransactionID: m.ReversesTransactionID,
		Lines:                 make([]ledger.TransactionLine, len(m.Lines)),
	}
	m.PopulateTenantAggregateRoot(&txn.TenantAggregateRoot)
	for i, line := range m.Lines {
		txn.Lines[i] = ledger.TransactionLine{
			ID:            line.ID,
			TransactionID: line.TransactionID,
			AccountID:     line.AccountID,
			AccountCode:   line.AccountCode,
			DebitAmount:   line.DebitAmount,
			CreditAmount:  line.CreditAmount,
			Description:   line.Description,
			CreatedAt:     line.CreatedAt,
		}
	}
	return txn
}

// TransactionModelFromDomain converts a domain transaction to its persistence model
func TransactionModelFromDomain(txn *ledger.Transaction) *TransactionModel {
	model := &TransactionModel{
		TransactionDate:       txn.TransactionDate,
		Description:           txn.Description,
		SourceType:            string(txn.SourceType),
		SourceID:              txn.SourceID,
		EntryKind:             string(txn.EntryKind),
		VarianceEpisode:       txn.VarianceEpisode,
		ReversesTransactionID: txn.ReversesTransactionID,
		Lines:                 make([]TransactionLineModel, len(txn.Lines)),
	}
	model.FromDomainTenantAggregateRoot(txn.TenantAggregateRoot)
	for i, line := range txn.Lines {
		model.Lines[i] = TransactionLineModel{
			ID:            line.ID,
			TransactionID: line.TransactionID,
			AccountID:     line.AccountID,
			AccountCode:   line.AccountCode,
			DebitAmount:   line.DebitAmount,
			CreditAmount:  line.CreditAmount,
			Description:   line.Description,
			CreatedAt:     line.CreatedAt,
		}
	}
	return model
}
