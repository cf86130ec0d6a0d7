package cache

import (
	"context"
	"sync"
	"time"

	"digimarket.backend/internal/domain/entities"
)

type memoryEntry struct {
	tenant    entities.TenantContext
	expiresAt time.Time
}

// MemoryTenantCache is an in-process TTL map keyed by normalized host.
type MemoryTenantCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryTenantCache(ttl time.Duration) *MemoryTenantCache {
	return &MemoryTenantCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryTenantCache) Get(_ context.Context, host string) (entities.TenantContext, bool) {
	c.mu.RLock()
	entry, ok := c.entries[host]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expiresAt) {
		return entities.TenantContext{}, false
	}
	return entry.tenant, true
}

func (c *MemoryTenantCache) Set(_ context.Context, host string, tenant entities.TenantContext) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[host] = memoryEntry{tenant: tenant, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *MemoryTenantCache) InvalidateAll(_ context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}
