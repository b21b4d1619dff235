package tokenmeta

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	info      Info
	expiresAt time.Time
}

type memoryCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time

	entries map[string]memoryEntry
}

// NewMemoryCache returns an in-process metadata cache. Used in tests and
// when no redis address is configured.
func NewMemoryCache(ttl time.Duration) *memoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryCache) Get(_ context.Context, tokenAddress, network string) (*Info, error) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(tokenAddress, network)]
	c.mu.RUnlock()

	if !ok || c.now().After(entry.expiresAt) {
		return nil, nil
	}

	info := entry.info
	return &info, nil
}

func (c *memoryCache) Set(_ context.Context, tokenAddress, network string, info *Info) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(tokenAddress, network)] = memoryEntry{
		info:      *info,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}
