package cep

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a TTL read-through cache over a Lookup. Only successful
// resolutions are cached; misses and transport errors always go back to
// the inner client so a recovered upstream is picked up immediately.
type MemoryCache struct {
	inner Lookup
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	result   Result
	storedAt time.Time
}

func NewMemoryCache(inner Lookup, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *MemoryCache) Lookup(ctx context.Context, code string) (Result, error) {
	code = Normalize(code)

	c.mu.RLock()
	cached, ok := c.entries[code]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.storedAt) < c.ttl {
		return cached.result, nil
	}

	res, err := c.inner.Lookup(ctx, code)
	if err != nil {
		return Result{}, err
	}

	c.mu.Lock()
	c.entries[code] = cacheEntry{result: res, storedAt: c.now()}
	c.mu.Unlock()
	return res, nil
}
