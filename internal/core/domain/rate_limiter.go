// Package domain concentrates the core entities of the rate limiter.
package domain

import "fmt"

// Bounds accepted for a Limits value.
const (
	MinInterval = 1
	MaxInterval = 10000
	MinLimit    = 1

	// MaxTokenLength is the longest caller token the boundary accepts.
	MaxTokenLength = 100
)

// Limits is the live rate limiting configuration: up to Limit requests
// within a rolling window of Interval seconds.
type Limits struct {
	Interval int `json:"interval"`
	Limit    int `json:"limit"`
}

// DefaultLimits mirrors the defaults the in-memory limit store is
// seeded with.
func DefaultLimits() Limits {
	return Limits{Interval: 60, Limit: 100}
}

// Validate checks the configured bounds. Errors match ErrInvalidLimits.
func (l Limits) Validate() error {
	if l.Interval < MinInterval || l.Interval > MaxInterval {
		return fmt.Errorf("%w: interval must be between %d and %d seconds, got %d",
			ErrInvalidLimits, MinInterval, MaxInterval, l.Interval)
	}
	if l.Limit < MinLimit {
		return fmt.Errorf("%w: limit must be at least %d, got %d", ErrInvalidLimits, MinLimit, l.Limit)
	}
	return nil
}

// ValidateToken rejects empty and over-length caller tokens before they
// reach the engine.
func ValidateToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: token must not be empty", ErrInvalidToken)
	}
	if len(token) > MaxTokenLength {
		return fmt.Errorf("%w: token must be at most %d characters, got %d",
			ErrInvalidToken, MaxTokenLength, len(token))
	}
	return nil
}
