package middleware

import (
	"context"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// TenantContextKey is the gin key holding the resolved entities.TenantContext.
const TenantContextKey = "tenant"

// TenantResolver maps a request host to its tenant.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, host string) (entities.TenantContext, error)
}

// TenantMiddleware resolves the tenant for every request from the Host header.
// Failing to resolve means the default tenant is missing, which is a server
// misconfiguration.
func TenantMiddleware(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := resolver.ResolveTenant(c.Request.Context(), c.Request.Host)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(TenantContextKey, tenant)
		ctx := context.WithValue(c.Request.Context(), logger.TenantKey, tenant.Key)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenant returns the tenant resolved by TenantMiddleware.
func GetTenant(c *gin.Context) (entities.TenantContext, bool) {
	v, exists := c.Get(TenantContextKey)
	if !exists {
		return entities.TenantContext{}, false
	}
	tenant, ok := v.(entities.TenantContext)
	return tenant, ok
}
