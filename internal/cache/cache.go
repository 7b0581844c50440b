// Package cache provides a small thread-safe LRU cache. It keeps gradient
// ramp texels keyed by their stop list, so repeated draws with one gradient
// compute the ramp once.
package cache

import "sync"

// Cache is a generic LRU cache holding at most Limit entries. The least
// recently used entry is evicted when a new one would exceed the limit.
//
// Cache is safe for concurrent use and must not be copied after first use.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	limit   int
	entries map[K]*node[K, V]
	order   list[K, V]

	hits, misses uint64
}

// New returns an empty cache holding at most limit entries. A limit below
// one is treated as one.
func New[K comparable, V any](limit int) *Cache[K, V] {
	return &Cache[K, V]{
		limit:   max(limit, 1),
		entries: make(map[K]*node[K, V]),
	}
}

// Get returns the value stored for key and marks it recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.moveToFront(n)
	return n.value, true
}

// Put stores value under key, replacing any previous value.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value)
}

// GetOrCreate returns the value stored for key, calling create to build it
// on a miss. create runs under the cache lock and must not use c.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		c.hits++
		c.order.moveToFront(n)
		return n.value
	}
	c.misses++
	v := create()
	c.put(key, v)
	return v
}

func (c *Cache[K, V]) put(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.order.moveToFront(n)
		return
	}
	for len(c.entries) >= c.limit {
		old := c.order.back()
		c.order.remove(old)
		delete(c.entries, old.key)
	}
	c.entries[key] = c.order.pushFront(key, value)
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Statistics are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*node[K, V])
	c.order = list[K, V]{}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: len(c.entries), Limit: c.limit, Hits: c.hits, Misses: c.misses}
}

// Stats contains cache statistics.
type Stats struct {
	Len    int
	Limit  int
	Hits   uint64
	Misses uint64
}
