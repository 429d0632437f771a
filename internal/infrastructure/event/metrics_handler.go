package event

import (
	"context"

	"github.com/merchantry/backend/internal/domain/ledger"
	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/returns"
	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/telemetry"
)

// MetricsHandler feeds the order pipeline metrics from domain events:
// submissions and lifecycle transitions, COD fee observations on
// dispatch, ledger postings by entry kind, and refund totals.
type MetricsHandler struct {
	metrics *telemetry.OrderMetrics
}

// NewMetricsHandler creates a handler recording into metrics
func NewMetricsHandler(metrics *telemetry.OrderMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// EventTypes returns the event types this handler consumes
func (h *MetricsHandler) EventTypes() []string {
	return []string{
		order.EventTypeOrderSubmitted,
		order.EventTypeOrderConfirmed,
		order.EventTypeOrderDispatched,
		order.EventTypeOrderCompleted,
		order.EventTypeOrderCancelled,
		ledger.EventTypeTransactionPosted,
		returns.EventTypeReturnRefunded,
	}
}

// Handle records the metric matching the event type
func (h *MetricsHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	tenantID := evt.TenantID()

	switch e := evt.(type) {
	case *order.OrderSubmittedEvent:
		h.metrics.RecordOrderSubmitted(ctx, tenantID)
	case *order.OrderConfirmedEvent:
		h.metrics.RecordOrderTransition(ctx, tenantID, string(order.OrderStatusConfirmed))
	case *order.OrderDispatchedEvent:
		h.metrics.RecordOrderTransition(ctx, tenantID, string(order.OrderStatusDispatched))
		if e.CodFee.IsPositive() {
			h.metrics.RecordCodFee(ctx, tenantID, e.CodFee)
		}
	case *order.OrderCompletedEvent:
		h.metrics.RecordOrderTransition(ctx, tenantID, string(order.OrderStatusCompleted))
	case *order.OrderCancelledEvent:
		h.metrics.RecordOrderTransition(ctx, tenantID, string(order.OrderStatusCancelled))
	case *ledger.TransactionPostedEvent:
		h.metrics.RecordLedgerPosting(ctx, tenantID, string(e.EntryKind))
	case *returns.ReturnRefundedEvent:
		h.metrics.RecordRefund(ctx, tenantID, e.RefundAmount)
	}
	return nil
}

var _ shared.EventHandler = (*MetricsHandler)(nil)
