package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds the in-process cache.
const DefaultMemoryEntries = 4096

// MemoryCache is an in-process Cache used when Redis is disabled.
// The least recently used entry is evicted once the cache is full.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithSize(DefaultMemoryEntries)
}

func NewMemoryCacheWithSize(size int) *MemoryCache {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	// lru.New only errors on a non-positive size.
	entries, _ := lru.New[string, memoryEntry](size)
	return &MemoryCache{entries: entries, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), entry.value...), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries.Add(key, entry)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
