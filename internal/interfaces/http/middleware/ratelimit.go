package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/merchantry/backend/internal/interfaces/http/dto"
)

// RateLimiter is a fixed-window in-memory limiter keyed per caller.
// Limits are best-effort and per process; a multi-replica deployment
// multiplies the effective budget by the replica count.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateWindow
	limit   int
	window  time.Duration
}

type rateWindow struct {
	remaining int
	resetAt   time.Time
}

// NewRateLimiter creates a rate limiter allowing limit requests per window
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*rateWindow),
		limit:   limit,
		window:  window,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, w := range rl.clients {
			if now.After(w.resetAt.Add(rl.window)) {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether a request for the given key fits the window
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.clients[key]
	if !ok || now.After(w.resetAt) {
		rl.clients[key] = &rateWindow{remaining: rl.limit - 1, resetAt: now.Add(rl.window)}
		return true
	}
	if w.remaining > 0 {
		w.remaining--
		return true
	}
	return false
}

// RateLimit returns a rate limiting middleware keyed by tenant and client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if tenantID := c.GetHeader(TenantHeaderKey); tenantID != "" {
			key = tenantID + ":" + key
		}

		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewErrorResponse(dto.ErrCodeRateLimit, "Too many requests, try again later"))
			return
		}

		c.Next()
	}
}
