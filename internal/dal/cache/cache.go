package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teamthreads/storefront/order/internal/metric"
)

type item struct {
	data      any
	expiresAt int64
}

// Cache is a TTL cache for read-side catalog responses. The submission
// pipeline never reads from it: price verification always fetches fresh
// catalog data.
type Cache struct {
	mu                sync.RWMutex
	items             map[string]item
	defaultExpiration time.Duration
	ticker            *time.Ticker
}

// New creates a cache with the given entry TTL and cleanup cadence.
func New(defaultExpiration, cleanupInterval time.Duration) *Cache {
	return &Cache{
		items:             make(map[string]item),
		defaultExpiration: defaultExpiration,
		ticker:            time.NewTicker(cleanupInterval),
	}
}

// Set stores a value under the key with the default TTL.
func (c *Cache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		data:      data,
		expiresAt: time.Now().Add(c.defaultExpiration).UnixNano(),
	}
}

// Get returns the cached value if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res, ok := c.items[key]
	if !ok || time.Now().UnixNano() > res.expiresAt {
		metric.CacheHitsTotal.WithLabelValues("miss").Inc()

		return nil, false
	}

	metric.CacheHitsTotal.WithLabelValues("hit").Inc()

	return res.data, true
}

// GC evicts expired entries until the context is done.
func (c *Cache) GC(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.ticker.C:
			c.mu.Lock()
			now := time.Now().UnixNano()
			evicted := 0
			for key, it := range c.items {
				if now > it.expiresAt {
					delete(c.items, key)
					evicted++
				}
			}
			c.mu.Unlock()
			if evicted > 0 {
				slog.Debug("Catalog cache evicted expired entries", "evicted", evicted)
			}
		}
	}
}

// Stop releases the cleanup ticker.
func (c *Cache) Stop() {
	c.ticker.Stop()
}
