package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/merchantry/backend/internal/domain/shared"
	"github.com/merchantry/backend/internal/infrastructure/logger"
	"github.com/merchantry/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client-chosen replay token.
const IdempotencyKeyHeader = "Idempotency-Key"

// Idempotency rejects replays of mutating requests. Clients that retry a
// transition (confirm, dispatch, refund, ...) send the same Idempotency-Key;
// the first request claims the key in the store, later ones get a 409 with
// code DUPLICATE_REQUEST. Requests without the header pass through, and a
// store outage fails open so a broken Redis never blocks order intake.
//
// The stored key is scoped tenant + method + path, so the same client key
// used against two different orders does not collide.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}

		tenantID := GetTenantID(c)
		composite := tenantID.String() + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		fresh, err := store.MarkProcessed(c.Request.Context(), composite, ttl)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("Idempotency store unavailable, skipping replay check",
				zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			requestID := c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicate,
				"Request with this idempotency key was already processed",
				requestID,
			))
			return
		}

		c.Next()
	}
}
