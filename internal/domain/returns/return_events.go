package returns

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchantry/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeReturn = "Return"

// Event type constants
const (
	EventTypeReturnApproved = "ReturnApproved"
	EventTypeReturnRefunded = "ReturnRefunded"
)

// ReturnApprovedEvent is raised when a return is approved. Revenue
// reversal and restock have been applied by the time it is published.
type ReturnApprovedEvent struct {
	shared.BaseDomainEvent
	ReturnID      uuid.UUID       `json:"return_id"`
	ReturnNumber  string          `json:"return_number"`
	ReturnType    ReturnType      `json:"return_type"`
	OrderID       *uuid.UUID      `json:"order_id,omitempty"`
	ProductsValue decimal.Decimal `json:"products_value"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
}

// NewReturnApprovedEvent creates a new ReturnApprovedEvent
func NewReturnApprovedEvent(r *Return) *ReturnApprovedEvent {
	return &ReturnApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnApproved, AggregateTypeReturn, r.ID, r.TenantID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		ReturnType:      r.Type,
		OrderID:         r.OrderID,
		ProductsValue:   r.ProductsValue,
		RefundAmount:    r.RefundAmount,
	}
}

// EventType returns the event type name
func (e *ReturnApprovedEvent) EventType() string {
	return EventTypeReturnApproved
}

// ReturnRefundedEvent is raised when an approved customer return settles
type ReturnRefundedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID       `json:"return_id"`
	ReturnNumber string          `json:"return_number"`
	ReturnType   ReturnType      `json:"return_type"`
	OrderID      *uuid.UUID      `json:"order_id,omitempty"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	RefundMethod RefundMethod    `json:"refund_method"`
}

// NewReturnRefundedEvent creates a new ReturnRefundedEvent
func NewReturnRefundedEvent(r *Return) *ReturnRefundedEvent {
	return &ReturnRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnRefunded, AggregateTypeReturn, r.ID, r.TenantID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		ReturnType:      r.Type,
		OrderID:         r.OrderID,
		RefundAmount:    r.RefundAmount,
		RefundMethod:    r.RefundMethod,
	}
}

// EventType returns the event type name
func (e *ReturnRefundedEvent) EventType() string {
	return EventTypeReturnRefunded
}
