// Package redis provides the request store backed by a Redis hash per
// token: one field per slot, expired individually so stale slots
// self-clean without a background sweep.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dharmaraopv/rate-limiter/internal/core/domain"
	"github.com/dharmaraopv/rate-limiter/internal/core/ports"
)

const defaultNumSlots = 10

// opTimeout bounds every store round trip so a stalled Redis cannot
// wedge the check path.
const opTimeout = 2 * time.Second

// Store implements ports.RequestStore on top of Redis hashes.
// Field-level expiry requires Redis 7.4 or newer.
type Store struct {
	client   *redis.Client
	numSlots int
}

var _ ports.RequestStore = (*Store)(nil)

// Config holds the connection parameters for the Redis store.
type Config struct {
	Addr     string
	Password string
	DB       int
	NumSlots int
}

// New connects to Redis and verifies the connection with a ping.
func New(cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.NumSlots <= 0 {
		cfg.NumSlots = defaultNumSlots
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{client: client, numSlots: cfg.NumSlots}, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client, numSlots int) *Store {
	if numSlots <= 0 {
		numSlots = defaultNumSlots
	}
	return &Store{client: client, numSlots: numSlots}
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// AllCounts reads every live slot field for token and decodes the ones
// inside the window ending at slot.
func (s *Store) AllCounts(ctx context.Context, token string, slot int64) (map[int64]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, token).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	counts := make(map[int64]int64, len(fields))
	for field, raw := range fields {
		slotIdx, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		if slotIdx <= slot-int64(s.numSlots) || slotIdx > slot {
			continue
		}
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[slotIdx] = count
	}
	return counts, nil
}

// RecordRequest atomically increments the slot field and schedules that
// single field to expire at slot+ttl. A field expiring between the two
// commands briefly outlives its intended TTL; that inconsistency is
// bounded and accepted.
func (s *Store) RecordRequest(ctx context.Context, token string, slot, ttl int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	field := strconv.FormatInt(slot, 10)

	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, token, field, 1)
	pipe.HExpireAt(ctx, token, time.Unix(slot+ttl, 0), field)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}
