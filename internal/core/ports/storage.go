// Package ports defines the contracts connecting the core to external
// implementations.
package ports

import "context"

// RequestStore abstracts where per-token slot counts live.
//
// AllCounts returns the counts recorded for token within the tracked
// window ending at slot; slots with no recorded requests are absent
// from the mapping. RecordRequest increments the count for
// (token, slot) by one; ttl is the interval length in seconds after
// which the slot's data is no longer relevant.
type RequestStore interface {
	AllCounts(ctx context.Context, token string, slot int64) (map[int64]int64, error)
	RecordRequest(ctx context.Context, token string, slot, ttl int64) error
}
