// Package services implements the sliding-window admission engine.
//
// Time is divided into slots of interval/10 seconds. A check sums the
// counts of the ten most recent slots, weighting the oldest one by the
// fraction of its width not yet elapsed, which lets the window slide
// smoothly instead of resetting at interval boundaries. Tokens found
// over quota are remembered in a bounded cache keyed by (token, slot)
// so repeat offenders skip the store round trip for the rest of the
// slot.
package services

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"

	"github.com/dharmaraopv/rate-limiter/internal/cache"
	"github.com/dharmaraopv/rate-limiter/internal/core/domain"
	"github.com/dharmaraopv/rate-limiter/internal/core/ports"
	"github.com/dharmaraopv/rate-limiter/internal/observability/metrics"
)

const (
	defaultNumSlots             = 10
	defaultBlockedCacheCapacity = 10000
)

// Config carries the engine's construction parameters.
type Config struct {
	// NumSlots is the number of slots tracked per token. Defaults to 10,
	// bounding the window's granularity error to ~10%.
	NumSlots int

	// BlockedCacheCapacity bounds the blocked-token cache. Defaults to
	// 10000 entries; old entries age out by LRU eviction since every new
	// slot produces new keys.
	BlockedCacheCapacity int

	// CountDeniedAttempts selects the counting policy. When true (the
	// default wiring in cmd/server), every attempt is recorded before the
	// decision, denied ones included, so sustained hammering keeps a
	// token limited. When false only admitted requests count.
	CountDeniedAttempts bool

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Limiter evaluates admission decisions against a request store and the
// live limits. Each check is a fresh evaluation; the only state kept
// across checks is the blocked-token cache.
type Limiter struct {
	store       ports.RequestStore
	limits      ports.LimitStore
	blocked     *cache.LRU[string, bool]
	numSlots    int
	countDenied bool
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

var _ ports.Limiter = (*Limiter)(nil)

// NewLimiter creates the engine.
func NewLimiter(store ports.RequestStore, limits ports.LimitStore, cfg Config) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("request store is required")
	}
	if limits == nil {
		return nil, fmt.Errorf("limit store is required")
	}
	if cfg.NumSlots <= 0 {
		cfg.NumSlots = defaultNumSlots
	}
	if cfg.BlockedCacheCapacity <= 0 {
		cfg.BlockedCacheCapacity = defaultBlockedCacheCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Limiter{
		store:       store,
		limits:      limits,
		blocked:     cache.NewLRU[string, bool](cfg.BlockedCacheCapacity),
		numSlots:    cfg.NumSlots,
		countDenied: cfg.CountDeniedAttempts,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}, nil
}

// IsRateLimited reports whether token is over quota at time now. The
// limits are read at the moment of use, never cached inside the engine.
func (l *Limiter) IsRateLimited(ctx context.Context, token string, now float64) (bool, error) {
	limits, err := l.limits.Limits()
	if err != nil {
		return false, err
	}
	slot := slotFor(now, limits.Interval)

	if blocked, _ := l.blocked.Get(blockedKey(token, slot)); blocked {
		l.metrics.BlockedCacheHit()
		l.metrics.Check(true)
		return true, nil
	}

	if l.countDenied {
		return l.checkCountingAttempts(ctx, token, slot, now, limits)
	}
	return l.checkCountingAdmitted(ctx, token, slot, now, limits)
}

// checkCountingAttempts records the request up front, then decides.
// available < 0 means limited; available == 0 is the last admitted
// request, and the blocked cache is primed at <= 0 because the next
// attempt in this slot is over the limit by construction.
func (l *Limiter) checkCountingAttempts(ctx context.Context, token string, slot int64, now float64, limits domain.Limits) (bool, error) {
	if err := l.store.RecordRequest(ctx, token, slot, int64(limits.Interval)); err != nil {
		l.metrics.StoreError()
		return false, err
	}

	available, err := l.available(ctx, token, slot, now, limits)
	if err != nil {
		l.metrics.StoreError()
		return false, err
	}

	if available <= 0 {
		l.blocked.Set(blockedKey(token, slot), true)
	}

	limited := available < 0
	if limited {
		l.logger.Debug("token over quota",
			zap.String("token", token),
			zap.Int64("slot", slot),
			zap.Int64("available", available))
	}
	l.metrics.Check(limited)
	return limited, nil
}

// checkCountingAdmitted decides first and records only on admission.
// Here available counts previously admitted requests only, so the quota
// is spent once available reaches zero.
func (l *Limiter) checkCountingAdmitted(ctx context.Context, token string, slot int64, now float64, limits domain.Limits) (bool, error) {
	available, err := l.available(ctx, token, slot, now, limits)
	if err != nil {
		l.metrics.StoreError()
		return false, err
	}

	if available <= 0 {
		l.blocked.Set(blockedKey(token, slot), true)
		l.metrics.Check(true)
		return true, nil
	}

	if err := l.store.RecordRequest(ctx, token, slot, int64(limits.Interval)); err != nil {
		l.metrics.StoreError()
		return false, err
	}
	l.metrics.Check(false)
	return false, nil
}

// available computes limit minus the weighted window total: the oldest
// tracked slot decays with the fraction of its width already elapsed,
// every other slot counts in full.
func (l *Limiter) available(ctx context.Context, token string, slot int64, now float64, limits domain.Limits) (int64, error) {
	counts, err := l.store.AllCounts(ctx, token, slot)
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return int64(limits.Limit), nil
	}

	oldest := slot
	for s := range counts {
		if s < oldest {
			oldest = s
		}
	}

	total := partialWeight(now, limits.Interval, counts[oldest])
	for s, count := range counts {
		if s != oldest {
			total += count
		}
	}
	return int64(limits.Limit) - total, nil
}

// slotFor maps fractional epoch seconds to a slot index that advances
// every interval/10 seconds.
func slotFor(now float64, interval int) int64 {
	return int64(math.Floor(now*10)) / int64(interval)
}

// partialWeight scales the oldest slot's count by the fraction of that
// slot's width not yet elapsed, rounding up so a nonzero count never
// decays to nothing before the slot leaves the window.
func partialWeight(now float64, interval int, count int64) int64 {
	elapsed := math.Mod(now*10, float64(interval)) / float64(interval)
	return int64(math.Ceil(float64(count) * (1 - elapsed)))
}

func blockedKey(token string, slot int64) string {
	return token + "-" + strconv.FormatInt(slot, 10)
}
