package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, lp)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))
}

func TestBridgeCore_NopWhenDisabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	core := lp.BridgeCore(zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestBridgeLogger_KeepsBaseCoreWriting(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	observed, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(observed)

	bridged := lp.BridgeLogger(base, zapcore.InfoLevel)
	bridged.Info("order dispatched", zap.String("order_number", "ORD-000042"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "order dispatched", entry.Message)
	assert.Equal(t, "ORD-000042", entry.ContextMap()["order_number"])
}

func TestLevelFilterCore(t *testing.T) {
	observed, logs := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: observed, minLevel: zapcore.WarnLevel}
	logger := zap.New(filtered)

	logger.Info("below threshold")
	logger.Warn("at threshold")
	logger.Error("above threshold")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "at threshold", logs.All()[0].Message)

	// With must preserve the filter.
	child := filtered.With([]zapcore.Field{zap.String("tenant", "t1")})
	assert.False(t, child.Enabled(zapcore.InfoLevel))
	assert.True(t, child.Enabled(zapcore.ErrorLevel))
}
