package cache

import (
	"context"
	"encoding/json"
	"time"

	"digimarket.backend/internal/domain/entities"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/redis"
	"go.uber.org/zap"
)

// RedisTenantCache shares resolved tenants between instances. Invalidation
// bumps a generation counter so stale keys are never read again and simply
// expire.
type RedisTenantCache struct {
	prefix string
	ttl    time.Duration
}

func NewRedisTenantCache(prefix string, ttl time.Duration) *RedisTenantCache {
	if prefix == "" {
		prefix = "tenant"
	}
	return &RedisTenantCache{prefix: prefix, ttl: ttl}
}

func (c *RedisTenantCache) generation(ctx context.Context) (string, error) {
	gen, err := redis.Get(ctx, c.prefix+":gen")
	if redis.IsNil(err) {
		return "0", nil
	}
	return gen, err
}

func (c *RedisTenantCache) key(gen, host string) string {
	return c.prefix + ":" + gen + ":" + host
}

// Get treats every redis failure as a miss.
func (c *RedisTenantCache) Get(ctx context.Context, host string) (entities.TenantContext, bool) {
	var tenant entities.TenantContext
	gen, err := c.generation(ctx)
	if err != nil {
		logger.Warn(ctx, "Tenant cache unavailable", zap.Error(err))
		return tenant, false
	}
	raw, err := redis.Get(ctx, c.key(gen, host))
	if err != nil {
		if !redis.IsNil(err) {
			logger.Warn(ctx, "Tenant cache read failed", zap.Error(err))
		}
		return tenant, false
	}
	if err := json.Unmarshal([]byte(raw), &tenant); err != nil {
		return entities.TenantContext{}, false
	}
	return tenant, true
}

func (c *RedisTenantCache) Set(ctx context.Context, host string, tenant entities.TenantContext) {
	if c.ttl <= 0 {
		return
	}
	gen, err := c.generation(ctx)
	if err != nil {
		return
	}
	payload, err := json.Marshal(tenant)
	if err != nil {
		return
	}
	if err := redis.Set(ctx, c.key(gen, host), payload, c.ttl); err != nil {
		logger.Warn(ctx, "Tenant cache write failed", zap.Error(err))
	}
}

func (c *RedisTenantCache) InvalidateAll(ctx context.Context) {
	gen, err := redis.Incr(ctx, c.prefix+":gen")
	if err != nil {
		logger.Error(ctx, "Tenant cache invalidation failed", zap.Error(err))
		return
	}
	logger.Debug(ctx, "Tenant cache invalidated", zap.Int64("generation", gen))
}
