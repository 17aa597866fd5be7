package ports

import "context"

// Limiter decides whether a caller token is over quota at time now,
// expressed as fractional epoch seconds.
type Limiter interface {
	IsRateLimited(ctx context.Context, token string, now float64) (bool, error)
}
