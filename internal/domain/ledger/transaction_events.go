package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTransaction = "LedgerTransaction"

// Event type constants
const (
	EventTypeTransactionPosted = "LedgerTransactionPosted"
)

// TransactionPostedEvent is raised when a balanced transaction is posted
type TransactionPostedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	SourceType    SourceType      `json:"source_type"`
	SourceID      *uuid.UUID      `json:"source_id,omitempty"`
	EntryKind     EntryKind       `json:"entry_kind"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	LineCount     int             `json:"line_count"`
	IsReversal    bool            `json:"is_reversal"`
}

// NewTransactionPostedEvent creates a new TransactionPostedEvent
func NewTransactionPostedEvent(txn *Transaction) *TransactionPostedEvent {
	return &TransactionPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionPosted, AggregateTypeTransaction, txn.ID, txn.TenantID),
		TransactionID:   txn.ID,
		SourceType:      txn.SourceType,
		SourceID:        txn.SourceID,
		EntryKind:       txn.EntryKind,
		TotalDebit:      txn.TotalDebit(),
		LineCount:       len(txn.Lines),
		IsReversal:      txn.IsReversal(),
	}
}

// EventType returns the event type name
func (e *TransactionPostedEvent) EventType() string {
	return EventTypeTransactionPosted
}
