// Package middleware provides the application's HTTP middlewares.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dharmaraopv/rate-limiter/internal/core/domain"
	"github.com/dharmaraopv/rate-limiter/internal/core/ports"
)

const quotaExceededMessage = "you have reached the maximum number of requests or actions allowed within a certain time frame"

// Quota guards the wrapped handlers with the sliding-window limiter.
// The caller identity is the API_KEY header when present, otherwise the
// client IP, so anonymous traffic still gets per-source quotas.
func Quota(limiter ports.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			identity := strings.TrimSpace(r.Header.Get("API_KEY"))
			if identity == "" {
				identity = extractIP(r)
			}
			if err := domain.ValidateToken(identity); err != nil {
				http.Error(w, "invalid caller identity", http.StatusBadRequest)
				return
			}

			now := float64(time.Now().UnixNano()) / float64(time.Second)
			limited, err := limiter.IsRateLimited(r.Context(), identity, now)
			if err != nil {
				logger.Error("quota check failed", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if limited {
				writeTooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractIP(r *http.Request) string {
	xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xForwardedFor != "" {
		parts := strings.Split(xForwardedFor, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xRealIP != "" {
		return xRealIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}

	return host
}

func writeTooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(quotaExceededMessage))
}
