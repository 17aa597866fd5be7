// Package memory implements the in-process request store. Tokens are
// evicted by LRU capacity at the store level and by the slot window at
// the per-token level; nothing is deleted explicitly.
package memory

import (
	"context"
	"sync"

	"github.com/dharmaraopv/rate-limiter/internal/cache"
	"github.com/dharmaraopv/rate-limiter/internal/core/ports"
)

const (
	defaultNumSlots = 10
	defaultCapacity = 1000
)

// Config holds the construction parameters for the in-process store.
type Config struct {
	// NumSlots is the number of slots tracked per token.
	NumSlots int
	// Capacity is the maximum number of tokens tracked at once.
	Capacity int
}

// Store keeps one slot counter per token inside a bounded LRU. The
// store mutex only guards lazy counter creation; counting itself is
// synchronized per token.
type Store struct {
	mu       sync.Mutex
	tokens   *cache.LRU[string, *slotCounter]
	numSlots int
}

var _ ports.RequestStore = (*Store)(nil)

// New creates an in-process request store. Zero config fields fall back
// to the defaults (10 slots, 1000 tokens).
func New(cfg Config) *Store {
	if cfg.NumSlots <= 0 {
		cfg.NumSlots = defaultNumSlots
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaultCapacity
	}
	return &Store{
		tokens:   cache.NewLRU[string, *slotCounter](cfg.Capacity),
		numSlots: cfg.NumSlots,
	}
}

// AllCounts returns the counts recorded for token in the window ending
// at slot. An unknown token yields an empty mapping.
func (s *Store) AllCounts(_ context.Context, token string, slot int64) (map[int64]int64, error) {
	counter, ok := s.tokens.Get(token)
	if !ok {
		return map[int64]int64{}, nil
	}
	return counter.snapshot(slot), nil
}

// RecordRequest increments the count for (token, slot), creating the
// token's counter lazily. The ttl is irrelevant in process memory; slot
// data ages out through the counter's own bounded cache.
func (s *Store) RecordRequest(_ context.Context, token string, slot, _ int64) error {
	s.mu.Lock()
	counter, ok := s.tokens.Get(token)
	if !ok {
		counter = newSlotCounter(s.numSlots)
		s.tokens.Set(token, counter)
	}
	s.mu.Unlock()

	counter.increment(slot)
	return nil
}
