// Package handlers exposes the limiter's HTTP endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dharmaraopv/rate-limiter/internal/core/domain"
	"github.com/dharmaraopv/rate-limiter/internal/core/ports"
	"github.com/dharmaraopv/rate-limiter/internal/observability/metrics"
)

// Handler serves the configure and check endpoints.
type Handler struct {
	limiter ports.Limiter
	limits  ports.LimitStore
	logger  *zap.Logger
	metrics *metrics.Metrics

	// now is swappable so tests can pin the clock.
	now func() float64
}

// New creates the HTTP handler set.
func New(limiter ports.Limiter, limits ports.LimitStore, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		limiter: limiter,
		limits:  limits,
		logger:  logger,
		metrics: m,
		now: func() float64 {
			return float64(time.Now().UnixNano()) / float64(time.Second)
		},
	}
}

// Routes mounts the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/configure", h.Configure)
	r.Get("/api/configure", h.CurrentLimits)
	r.Get("/api/is_rate_limited/{token}", h.IsRateLimited)
	r.Get("/healthz", h.Health)
}

// Configure replaces the live limits. Out-of-range input is rejected
// and the previous configuration stays in effect.
func (h *Handler) Configure(w http.ResponseWriter, r *http.Request) {
	var limits domain.Limits
	if err := json.NewDecoder(r.Body).Decode(&limits); err != nil {
		respondError(w, http.StatusBadRequest, "request body must be a JSON object with interval and limit")
		return
	}
	if err := limits.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.limits.SetLimits(limits); err != nil {
		h.logger.Error("failed to persist limits", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to persist configuration")
		return
	}

	h.metrics.LimitsUpdated()
	h.logger.Info("limits updated",
		zap.Int("interval", limits.Interval),
		zap.Int("limit", limits.Limit))
	respondJSON(w, http.StatusOK, limits)
}

// CurrentLimits returns the live configuration.
func (h *Handler) CurrentLimits(w http.ResponseWriter, r *http.Request) {
	limits, err := h.limits.Limits()
	if err != nil {
		if errors.Is(err, domain.ErrLimitsNotConfigured) {
			respondError(w, http.StatusNotFound, "rate limits have not been configured")
			return
		}
		h.logger.Error("failed to read limits", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to read configuration")
		return
	}
	respondJSON(w, http.StatusOK, limits)
}

// IsRateLimited answers whether the token is currently over quota with
// a bare JSON boolean, mirroring the configure payload style.
func (h *Handler) IsRateLimited(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if err := domain.ValidateToken(token); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limited, err := h.limiter.IsRateLimited(r.Context(), token, h.now())
	if err != nil {
		h.logger.Error("rate limit check failed", zap.String("token", token), zap.Error(err))
		switch {
		case errors.Is(err, domain.ErrStoreUnavailable):
			respondError(w, http.StatusServiceUnavailable, "request store unavailable")
		case errors.Is(err, domain.ErrLimitsNotConfigured):
			respondError(w, http.StatusInternalServerError, "rate limits have not been configured")
		default:
			respondError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	respondJSON(w, http.StatusOK, limited)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
