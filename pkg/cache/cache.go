// Package cache provides a thread-safe LRU cache for compiled expressions.
//
// Binding layers evaluate the same few expression strings over and over
// against changing view models. The cache avoids re-parsing those strings:
// entries are keyed by the exact expression text and hold the immutable
// compiled AST, so a cached expression can be shared by any number of
// evaluations. The cache is owned by the caller and attached to an evaluator
// with evaluator.WithCache; nothing in this module keeps a hidden global one.
//
// # Example
//
//	c := cache.New(1024)
//	expr, err := c.GetOrCompile("items.length > 0", compile)
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/sandrolain/cspexpr/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// Cache is a thread-safe LRU (Least Recently Used) cache for compiled expressions.
// Once the capacity is reached, the least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	capacity int
	lru      *lru.Cache
	group    singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

// Stats is a snapshot of cache usage counters.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// New creates a new LRU cache with the given capacity.
// If capacity <= 0, DefaultCapacity is used.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	// lru.New only fails for non-positive sizes.
	l, err := lru.New(capacity)
	if err != nil {
		panic(err)
	}
	return &Cache{
		capacity: capacity,
		lru:      l,
	}
}

// Get retrieves a compiled expression from the cache and marks it as most
// recently used.
func (c *Cache) Get(key string) (*types.Expression, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return v.(*types.Expression), true
}

// Set inserts or replaces an expression in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache) Set(key string, expr *types.Expression) {
	c.lru.Add(key, expr)
}

// GetOrCompile retrieves the expression for key from cache, or calls compile
// to create it, caches the result, and returns it.
//
// Concurrent misses on the same key share a single compile call. Errors are
// returned to every waiting caller and are not cached.
func (c *Cache) GetOrCompile(key string, compile func() (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(key); ok {
		return expr, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have filled the entry while this one waited.
		if v, ok := c.lru.Peek(key); ok {
			return v, nil
		}
		expr, err := compile()
		if err != nil {
			return nil, err
		}
		c.Set(key, expr)
		return expr, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Expression), nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns the hit and miss counters observed by Get and GetOrCompile.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Len:    c.lru.Len(),
	}
}

// Invalidate removes a single entry from the cache.
func (c *Cache) Invalidate(key string) {
	c.lru.Remove(key)
}

// Clear removes all entries from the cache.
func (c *Cache) Clear() {
	c.lru.Purge()
}
