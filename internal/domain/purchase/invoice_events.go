package purchase

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeInvoice = "PurchaseInvoice"

// Event type constant
const EventTypeInvoiceRecorded = "PurchaseInvoiceRecorded"

// InvoiceRecordedEvent is raised when a supplier invoice is recorded.
// Batches are seeded and the payable is posted by the time it is
// published.
type InvoiceRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	SupplierName  string          `json:"supplier_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	LineCount     int             `json:"line_count"`
}

// NewInvoiceRecordedEvent creates a new InvoiceRecordedEvent
func NewInvoiceRecordedEvent(inv *Invoice) *InvoiceRecordedEvent {
	return &InvoiceRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceRecorded, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		SupplierName:    inv.SupplierName,
		TotalAmount:     inv.TotalAmount,
		LineCount:       len(inv.Items),
	}
}

// EventType returns the event type name
func (e *InvoiceRecordedEvent) EventType() string {
	return EventTypeInvoiceRecorded
}
