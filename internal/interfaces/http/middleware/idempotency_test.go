package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchantry/backend/internal/infrastructure/cache"
)

func newIdempotencyRouter(t *testing.T) (*gin.Engine, *cache.InMemoryIdempotencyStore) {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	router := gin.New()
	router.Use(Tenant())
	router.Use(Idempotency(store, time.Minute))
	router.POST("/orders/:id/confirm", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/orders/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, store
}

func confirmRequest(tenantID uuid.UUID, orderID, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/confirm", nil)
	req.Header.Set(TenantHeaderKey, tenantID.String())
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req
}

func TestIdempotency_RejectsReplay(t *testing.T) {
	router, _ := newIdempotencyRouter(t)
	tenantID := uuid.New()
	orderID := uuid.New().String()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, confirmRequest(tenantID, orderID, "retry-token-1"))
	require.Equal(t, http.StatusOK, first.Code)

	replay := httptest.NewRecorder()
	router.ServeHTTP(replay, confirmRequest(tenantID, orderID, "retry-token-1"))
	assert.Equal(t, http.StatusConflict, replay.Code)
	assert.Contains(t, replay.Body.String(), "DUPLICATE_REQUEST")
}

func TestIdempotency_KeyScopedByPath(t *testing.T) {
	router, _ := newIdempotencyRouter(t)
	tenantID := uuid.New()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, confirmRequest(tenantID, uuid.New().String(), "retry-token-1"))
	require.Equal(t, http.StatusOK, first.Code)

	// Same key against a different order must not collide.
	other := httptest.NewRecorder()
	router.ServeHTTP(other, confirmRequest(tenantID, uuid.New().String(), "retry-token-1"))
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestIdempotency_KeyScopedByTenant(t *testing.T) {
	router, _ := newIdempotencyRouter(t)
	orderID := uuid.New().String()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, confirmRequest(uuid.New(), orderID, "retry-token-1"))
	require.Equal(t, http.StatusOK, first.Code)

	other := httptest.NewRecorder()
	router.ServeHTTP(other, confirmRequest(uuid.New(), orderID, "retry-token-1"))
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestIdempotency_PassThroughWithoutKey(t *testing.T) {
	router, _ := newIdempotencyRouter(t)
	tenantID := uuid.New()
	orderID := uuid.New().String()

	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, confirmRequest(tenantID, orderID, ""))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestIdempotency_IgnoresReads(t *testing.T) {
	router, _ := newIdempotencyRouter(t)
	tenantID := uuid.New()
	orderID := uuid.New().String()

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID, nil)
		req.Header.Set(TenantHeaderKey, tenantID.String())
		req.Header.Set(IdempotencyKeyHeader, "read-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
