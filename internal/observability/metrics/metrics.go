// Package metrics exposes the limiter's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors the engine and handlers report into.
// A nil *Metrics is valid and records nothing, so tests can leave it
// out.
type Metrics struct {
	checks           *prometheus.CounterVec
	blockedCacheHits prometheus.Counter
	storeErrors      prometheus.Counter
	limitUpdates     prometheus.Counter
}

// New registers the limiter's collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelimiter_checks_total",
				Help: "Total number of rate limit checks performed",
			},
			[]string{"result"},
		),
		blockedCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ratelimiter_blocked_cache_hits_total",
				Help: "Checks answered by the blocked-token cache without a store read",
			},
		),
		storeErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ratelimiter_store_errors_total",
				Help: "Request store operations that failed",
			},
		),
		limitUpdates: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ratelimiter_limit_updates_total",
				Help: "Accepted configuration updates",
			},
		),
	}
}

// Check records the outcome of one admission decision.
func (m *Metrics) Check(limited bool) {
	if m == nil {
		return
	}
	result := "allowed"
	if limited {
		result = "limited"
	}
	m.checks.WithLabelValues(result).Inc()
}

// BlockedCacheHit records a fast-path answer.
func (m *Metrics) BlockedCacheHit() {
	if m == nil {
		return
	}
	m.blockedCacheHits.Inc()
}

// StoreError records a failed store operation.
func (m *Metrics) StoreError() {
	if m == nil {
		return
	}
	m.storeErrors.Inc()
}

// LimitsUpdated records an accepted configuration change.
func (m *Metrics) LimitsUpdated() {
	if m == nil {
		return
	}
	m.limitUpdates.Inc()
}
