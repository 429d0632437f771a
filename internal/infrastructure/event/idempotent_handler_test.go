package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/merchantry/backend/internal/domain/order"
	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/cache"
)

type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("store down")
}

func (failingStore) IsProcessed(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func (failingStore) Close() error { return nil }

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	inner := &recordingHandler{types: []string{order.EventTypeOrderSubmitted}}
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	wrapped := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())

	evt := submittedEvent(t)
	require.NoError(t, wrapped.Handle(context.Background(), evt))
	require.NoError(t, wrapped.Handle(context.Background(), evt))

	assert.Equal(t, 1, inner.seen())
	stats := wrapped.Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
}

func TestIdempotentHandler_DistinctEventsBothProcessed(t *testing.T) {
	inner := &recordingHandler{types: []string{order.EventTypeOrderSubmitted}}
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	wrapped := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())

	require.NoError(t, wrapped.Handle(context.Background(), submittedEvent(t)))
	require.NoError(t, wrapped.Handle(context.Background(), submittedEvent(t)))

	assert.Equal(t, 2, inner.seen())
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := &recordingHandler{types: []string{order.EventTypeOrderSubmitted}}
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	wrapped := NewIdempotentHandler(inner, store,
		shared.IdempotencyConfig{Enabled: false}, zap.NewNop())

	evt := submittedEvent(t)
	require.NoError(t, wrapped.Handle(context.Background(), evt))
	require.NoError(t, wrapped.Handle(context.Background(), evt))

	assert.Equal(t, 2, inner.seen())
}

func TestIdempotentHandler_StoreFailureFailsOpen(t *testing.T) {
	inner := &recordingHandler{types: []string{order.EventTypeOrderSubmitted}}
	wrapped := NewIdempotentHandler(inner, failingStore{}, shared.DefaultIdempotencyConfig(), zap.NewNop())

	require.NoError(t, wrapped.Handle(context.Background(), submittedEvent(t)))
	assert.Equal(t, 1, inner.seen())
}

func TestIdempotentHandler_HandlerErrorCounted(t *testing.T) {
	inner := &recordingHandler{types: []string{order.EventTypeOrderSubmitted}, err: errors.New("boom")}
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	wrapped := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), zap.NewNop())

	assert.Error(t, wrapped.Handle(context.Background(), submittedEvent(t)))
	assert.Equal(t, int64(1), wrapped.Stats().EventsFailed)
}

func TestIdempotentHandler_EventTypesDelegated(t *testing.T) {
	inner := &recordingHandler{types: []string{order.EventTypeOrderSubmitted}}
	wrapped := NewIdempotentHandler(inner, cache.NewInMemoryIdempotencyStore(), shared.DefaultIdempotencyConfig(), zap.NewNop())

	assert.Equal(t, inner.EventTypes(), wrapped.EventTypes())
}
