package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// OrderMetrics exposes the order pipeline to dashboards: submissions,
// lifecycle transitions, ledger postings and refunds as counters, plus
// periodically sampled gauges for order backlog and stock on hand.
type OrderMetrics struct {
	logger *zap.Logger

	orderSubmittedTotal  *Counter
	orderTransitionTotal *Counter
	ledgerPostingTotal   *Counter
	refundAmountTotal    *Counter
	codFeeAmount         *Histogram

	orderBacklog  *Gauge
	stockOnHand   *Gauge
	statsProvider StatsProvider

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// StatsProvider supplies the gauge values sampled by the collection loop.
// It lets this package read aggregate state without importing the domain
// repositories.
type StatsProvider interface {
	// OrderCountByStatus returns how many orders a tenant has per status.
	OrderCountByStatus(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error)

	// StockOnHandUnits returns the tenant's total unsold batch quantity,
	// rounded down to whole units.
	StockOnHandUnits(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// ActiveTenantIDs returns every tenant with at least one order.
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// NewOrderMetrics builds the instrument set on the given meter.
func NewOrderMetrics(meter metric.Meter, provider StatsProvider, logger *zap.Logger) (*OrderMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	om := &OrderMetrics{
		logger:        logger,
		statsProvider: provider,
		stopChan:      make(chan struct{}),
	}

	var err error
	if om.orderSubmittedTotal, err = NewCounter(meter,
		"merchantry_order_submitted_total",
		"Total number of orders submitted",
		"{orders}",
	); err != nil {
		return nil, err
	}
	if om.orderTransitionTotal, err = NewCounter(meter,
		"merchantry_order_transition_total",
		"Total number of order lifecycle transitions, labeled by target status",
		"{transitions}",
	); err != nil {
		return nil, err
	}
	if om.ledgerPostingTotal, err = NewCounter(meter,
		"merchantry_ledger_posting_total",
		"Total number of ledger transactions posted, labeled by entry kind",
		"{transactions}",
	); err != nil {
		return nil, err
	}
	if om.refundAmountTotal, err = NewCounter(meter,
		"merchantry_refund_amount_total",
		"Total refunded amount in minor currency units",
		"{cents}",
	); err != nil {
		return nil, err
	}
	if om.codFeeAmount, err = NewHistogram(meter,
		"merchantry_cod_fee_amount",
		"Distribution of COD fees charged per order",
		"{currency}",
		1, 5, 10, 25, 50, 100, 250, 500,
	); err != nil {
		return nil, err
	}
	if om.orderBacklog, err = NewGauge(meter,
		"merchantry_order_backlog",
		"Current number of orders per lifecycle status",
		"{orders}",
	); err != nil {
		return nil, err
	}
	if om.stockOnHand, err = NewGauge(meter,
		"merchantry_stock_on_hand_units",
		"Current unsold batch quantity across all products",
		"{units}",
	); err != nil {
		return nil, err
	}

	return om, nil
}

// RecordOrderSubmitted counts a new order intake.
func (om *OrderMetrics) RecordOrderSubmitted(ctx context.Context, tenantID uuid.UUID) {
	om.orderSubmittedTotal.Inc(ctx, AttrTenantID.String(tenantID.String()))
}

// RecordOrderTransition counts a lifecycle transition into targetStatus.
func (om *OrderMetrics) RecordOrderTransition(ctx context.Context, tenantID uuid.UUID, targetStatus string) {
	om.orderTransitionTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrOrderStatus.String(targetStatus),
	)
}

// RecordLedgerPosting counts a posted ledger transaction by entry kind.
func (om *OrderMetrics) RecordLedgerPosting(ctx context.Context, tenantID uuid.UUID, entryKind string) {
	om.ledgerPostingTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrEntryKind.String(entryKind),
	)
}

// RecordRefund accumulates a refund amount in minor units.
func (om *OrderMetrics) RecordRefund(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal) {
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	om.refundAmountTotal.Add(ctx, cents, AttrTenantID.String(tenantID.String()))
}

// RecordCodFee records a calculated COD fee observation.
func (om *OrderMetrics) RecordCodFee(ctx context.Context, tenantID uuid.UUID, fee decimal.Decimal) {
	om.codFeeAmount.Record(ctx, fee.InexactFloat64(), AttrTenantID.String(tenantID.String()))
}

// StartPeriodicCollection samples the backlog and stock gauges every
// interval until Stop is called or ctx is cancelled. Subsequent calls are
// no-ops.
func (om *OrderMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	om.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go om.collectLoop(ctx, interval)
	})
}

func (om *OrderMetrics) collectLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	om.collect(ctx)
	for {
		select {
		case <-om.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			om.collect(ctx)
		}
	}
}

func (om *OrderMetrics) collect(ctx context.Context) {
	if om.statsProvider == nil {
		return
	}

	tenantIDs, err := om.statsProvider.ActiveTenantIDs(ctx)
	if err != nil {
		om.logger.Error("Failed to list tenants for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		om.collectTenant(ctx, tenantID)
	}
}

func (om *OrderMetrics) collectTenant(ctx context.Context, tenantID uuid.UUID) {
	counts, err := om.statsProvider.OrderCountByStatus(ctx, tenantID)
	if err != nil {
		om.logger.Warn("Failed to sample order backlog",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
	} else {
		for status, count := range counts {
			om.orderBacklog.Record(ctx, count,
				AttrTenantID.String(tenantID.String()),
				AttrOrderStatus.String(status),
			)
		}
	}

	units, err := om.statsProvider.StockOnHandUnits(ctx, tenantID)
	if err != nil {
		om.logger.Warn("Failed to sample stock on hand",
			zap.String("tenant_id", tenantID.String()), zap.Error(err))
		return
	}
	om.stockOnHand.Record(ctx, units, AttrTenantID.String(tenantID.String()))
}

// Stop terminates the collection loop. Safe to call more than once.
func (om *OrderMetrics) Stop() {
	om.stopOnce.Do(func() {
		close(om.stopChan)
	})
}
