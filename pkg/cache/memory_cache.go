// Package cache provides a small in-process TTL cache, used by
// internal/planservice to avoid recompiling a routegraph.Graph for
// repeated requests against the same order book.
package cache

import (
	"sync"
	"time"
)

// Item is one cached value with its absolute expiration time (UnixNano,
// zero means "never expires").
type Item struct {
	Value      interface{}
	Expiration int64
}

// MemoryCache is a concurrency-safe, TTL-expiring key/value store backed
// by sync.Map with a background sweep for expired entries.
type MemoryCache struct {
	items sync.Map
}

// NewMemoryCache starts a MemoryCache and its background expiry sweep.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	go c.sweepExpired()
	return c
}

// Set stores value under key with the given ttl. ttl of zero means the
// entry never expires on its own (Delete/Clear still remove it).
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}
	c.items.Store(key, &Item{Value: value, Expiration: expiration})
}

// Get returns the value stored under key, or (nil, false) if absent or
// expired.
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	raw, ok := c.items.Load(key)
	if !ok {
		return nil, false
	}
	item := raw.(*Item)
	if item.Expiration > 0 && time.Now().UnixNano() > item.Expiration {
		c.items.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// Delete removes key, if present.
func (c *MemoryCache) Delete(key string) {
	c.items.Delete(key)
}

// Clear removes every entry.
func (c *MemoryCache) Clear() {
	c.items.Range(func(key, _ interface{}) bool {
		c.items.Delete(key)
		return true
	})
}

func (c *MemoryCache) sweepExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now().UnixNano()
		c.items.Range(func(key, value interface{}) bool {
			if item := value.(*Item); item.Expiration > 0 && now > item.Expiration {
				c.items.Delete(key)
			}
			return true
		})
	}
}
