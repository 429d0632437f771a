package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened to an aggregate: an order moved
// through its lifecycle, a ledger transaction posted, a refund settled.
// Aggregates collect events while a unit of work runs; the application
// service publishes them after the transaction commits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	TenantID() uuid.UUID
}

// BaseDomainEvent carries the fields every domain event shares. Concrete
// events embed it and add their own payload.
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggID         uuid.UUID `json:"aggregate_id"`
	AggType       string    `json:"aggregate_type"`
	TenantIDValue uuid.UUID `json:"tenant_id"`
}

// EventID returns the unique event identifier, the key the idempotent
// delivery layer deduplicates on.
func (e *BaseDomainEvent) EventID() uuid.UUID { return e.ID }

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string { return e.Type }

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }

// AggregateID returns the ID of the aggregate that produced this event
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.AggID }

// AggregateType returns the type of the aggregate
func (e *BaseDomainEvent) AggregateType() string { return e.AggType }

// TenantID returns the tenant that owns the aggregate
func (e *BaseDomainEvent) TenantID() uuid.UUID { return e.TenantIDValue }

// NewBaseDomainEvent stamps a fresh event with identity and time
func NewBaseDomainEvent(eventType, aggType string, aggID, tenantID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggID:         aggID,
		AggType:       aggType,
		TenantIDValue: tenantID,
	}
}
