package configstore

import (
	"sync"

	"github.com/dharmaraopv/rate-limiter/internal/core/domain"
	"github.com/dharmaraopv/rate-limiter/internal/core/ports"
)

// MemoryStore holds the limits in process memory, seeded with the
// defaults. Used by the memory-backend deployment and by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	limits domain.Limits
}

var _ ports.LimitStore = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory limit store starting at the
// default limits.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{limits: domain.DefaultLimits()}
}

// Limits returns the current configuration.
func (s *MemoryStore) Limits() (domain.Limits, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limits, nil
}

// SetLimits validates and replaces the configuration wholesale.
func (s *MemoryStore) SetLimits(limits domain.Limits) error {
	if err := limits.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = limits
	return nil
}
