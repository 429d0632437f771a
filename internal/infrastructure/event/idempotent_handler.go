package event

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/merchantry/backend/internal/domain/shared"
)

// IdempotencyStats is a snapshot of an idempotent handler's counters
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// IdempotentHandler wraps an EventHandler so redelivered events are
// processed at most once within the store's TTL. The store is consulted
// with an atomic check-and-set; if it is unreachable the event is
// processed anyway, since a duplicate side effect is cheaper than a
// dropped event.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// NewIdempotentHandler wraps handler with idempotency checking against
// the given store
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, config shared.IdempotencyConfig, logger *zap.Logger) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  config,
		logger:  logger,
	}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless its ID was already seen
func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, evt)
	}

	eventID := evt.EventID().String()
	isNew, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	if err != nil {
		h.logger.Warn("Idempotency store unavailable, processing event anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", evt.EventType()),
			zap.Error(err),
		)
	} else if !isNew {
		h.duplicate.Add(1)
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", evt.EventType()),
		)
		return nil
	}

	// The idempotency key is kept on failure: the TTL acts as a retry
	// cooldown instead of allowing immediate redelivery loops.
	if err := h.handler.Handle(ctx, evt); err != nil {
		h.failed.Add(1)
		return err
	}

	h.processed.Add(1)
	return nil
}

// Stats returns the handler's counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: h.processed.Load(),
		EventsDuplicate: h.duplicate.Load(),
		EventsFailed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
