package ports

import "github.com/dharmaraopv/rate-limiter/internal/core/domain"

// LimitStore supplies the live {interval, limit} pair. The engine reads
// it on every check; SetLimits replaces the value wholesale.
type LimitStore interface {
	Limits() (domain.Limits, error)
	SetLimits(domain.Limits) error
}
