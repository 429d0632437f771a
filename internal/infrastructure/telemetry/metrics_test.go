package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, mp)

	assert.False(t, mp.IsEnabled())
	assert.NoError(t, mp.ForceFlush(context.Background()))
	assert.NoError(t, mp.Shutdown(context.Background()))
	assert.NotNil(t, mp.Meter("test"))
}

func TestInstrumentHelpers(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	ctx := context.Background()

	counter, err := NewCounter(meter, "test_total", "test counter", "{events}")
	require.NoError(t, err)
	counter.Inc(ctx, AttrTenantID.String("t1"))
	counter.Add(ctx, 5)

	hist, err := NewHistogram(meter, "test_duration", "test histogram", "s", 0.1, 1, 10)
	require.NoError(t, err)
	hist.Record(ctx, 0.42)

	gauge, err := NewGauge(meter, "test_gauge", "test gauge", "{units}")
	require.NoError(t, err)
	gauge.Record(ctx, 7, AttrOrderStatus.String("PENDING"))
}
