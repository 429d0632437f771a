package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/merchantry/backend/internal/infrastructure/logger"
	"github.com/merchantry/backend/internal/interfaces/http/dto"
)

// Keys used to store tenant information in gin.Context
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths are paths served without tenant context (health, metrics)
	SkipPaths []string
	// Required rejects requests that carry no tenant header
	Required bool
}

// DefaultTenantConfig returns the default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready"},
		Required:  true,
	}
}

// Tenant extracts the tenant ID from the X-Tenant-ID header. Request
// authentication happens upstream; this service trusts the gateway to
// have resolved the caller to a tenant.
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns the tenant middleware with custom configuration
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := c.GetHeader(TenantHeaderKey)
		if raw == "" {
			if cfg.Required {
				abortTenant(c, "Tenant identification required")
				return
			}
			c.Next()
			return
		}

		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			abortTenant(c, "Invalid tenant ID format")
			return
		}

		c.Set(TenantIDKey, tenantID)

		// enrich the request context so service-layer logs carry the tenant
		ctx := c.Request.Context()
		ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortTenant(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeTenant, message))
}

// GetTenantID retrieves the tenant ID set by the middleware. The zero
// UUID means the middleware did not run or the path was skipped.
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(TenantIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
