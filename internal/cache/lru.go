// Package cache provides the bounded LRU store used for per-token slot
// counts and for the blocked-token fast path.
package cache

import (
	"container/list"
	"sync"
)

// LRU is a fixed-capacity key/value store with least-recently-used
// eviction. Set and Get refresh recency; Entries does not. All methods
// are safe for concurrent use, each holding the lock for a single
// operation only.
type LRU[K comparable, V any] struct {
	capacity int

	mu    sync.Mutex
	order *list.List // front is most recently used
	items map[K]*list.Element
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRU creates an LRU holding at most capacity entries. A capacity
// below one is raised to one.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
	}
}

// Set inserts or overwrites key and marks it most recently used. When
// the number of distinct keys exceeds capacity, the least recently used
// key is evicted.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}

	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry[K, V]).key)
	}
}

// Get returns the value for key and marks it most recently used. The
// second return is false when the key is absent.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[K, V]).value, true
}

// Entries returns a copy of the stored mapping without touching recency
// order.
func (c *LRU[K, V]) Entries() map[K]V {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[K]V, len(c.items))
	for k, el := range c.items {
		out[k] = el.Value.(*lruEntry[K, V]).value
	}
	return out
}

// Len returns the number of entries currently stored.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
