package domain

import "errors"

var (
	// ErrInvalidLimits marks a configuration update that failed validation.
	ErrInvalidLimits = errors.New("invalid rate limit configuration")

	// ErrInvalidToken marks a malformed caller token.
	ErrInvalidToken = errors.New("invalid token")

	// ErrStoreUnavailable marks a request store connectivity failure. It is
	// never folded into a "zero requests" answer.
	ErrStoreUnavailable = errors.New("request store unavailable")

	// ErrLimitsNotConfigured is returned by limit stores that have never
	// been written. It must not be read as "unlimited".
	ErrLimitsNotConfigured = errors.New("rate limits not configured")
)
