// Package cache keeps short-lived copies of source results in a ristretto cache.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache defines a generic TTL cache keyed by string.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Close()
}

// TTLCache is a Cache backed by ristretto where every entry expires after ttl.
type TTLCache[T any] struct {
	c   *ristretto.Cache[string, T]
	ttl time.Duration
}

// NewTTLCache creates a cache sized for a handful of keys. Each entry costs 1.
func NewTTLCache[T any](maxItems int64, ttl time.Duration) (*TTLCache[T], error) {
	if maxItems <= 0 {
		maxItems = 16
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
		// Entries are costed by count; ristretto's per-item overhead would
		// otherwise exceed MaxCost and every Set would be rejected.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &TTLCache[T]{c: c, ttl: ttl}, nil
}

func (c *TTLCache[T]) Get(key string) (T, bool) {
	return c.c.Get(key)
}

// Set stores data and waits for the write buffer to drain so the value is
// visible to the next Get.
func (c *TTLCache[T]) Set(key string, data T) {
	c.c.SetWithTTL(key, data, 1, c.ttl)
	c.c.Wait()
}

func (c *TTLCache[T]) Delete(key string) {
	c.c.Del(key)
}

func (c *TTLCache[T]) Close() {
	c.c.Close()
}
