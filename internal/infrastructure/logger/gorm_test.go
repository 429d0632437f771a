package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func orderQuery() (string, int64) {
	return "SELECT * FROM orders WHERE tenant_id = $1 AND status = $2", 3
}

func TestGormLogger_Defaults(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)

	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_Options(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogModeClones(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info)

	clone, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, gormlogger.Warn, clone.logLevel)
}

func TestGormLogger_LevelGating(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	gl.Info(context.Background(), "migration applied: %s", "000001")
	gl.Warn(context.Background(), "connection pool saturated")
	gl.Trace(context.Background(), time.Now(), orderQuery, nil)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_TraceError(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), orderQuery, errors.New("duplicate key value violates unique constraint"))

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "sql error", logs[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
}

func TestGormLogger_TraceRecordNotFoundSuppressed(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), orderQuery, gormlogger.ErrRecordNotFound)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_TraceSlowQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), orderQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "slow sql")
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
}

func TestGormLogger_TraceNormalQuery(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	gl.Trace(context.Background(), time.Now(), orderQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "sql query", logs[0].Message)
	assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
}

func TestGormLogger_TraceCarriesRequestAndTenant(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Info)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-77")
	ctx = context.WithValue(ctx, TenantIDKey, "tenant-42")

	gl.Trace(ctx, time.Now(), orderQuery, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)

	fields := make(map[string]string)
	for _, f := range logs[0].Context {
		fields[f.Key] = f.String
	}
	assert.Equal(t, "req-77", fields["request_id"])
	assert.Equal(t, "tenant-42", fields["tenant_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	cases := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapGormLogLevel(tc.level))
		})
	}
}
