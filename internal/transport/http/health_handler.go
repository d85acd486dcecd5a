package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const readinessTimeout = 2 * time.Second

// Pinger reports database connectivity. Satisfied by pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db      Pinger
	version string
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db Pinger, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, version: version, logger: logger}
}

// Routes returns the health endpoints. Unauthenticated; probes must work
// without credentials.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Health)
	r.Get("/live", h.Live)
	r.Get("/ready", h.Ready)
	return r
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

// Live handles GET /api/health/live. The process answering is the check.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /api/health/ready. Readiness requires a responsive
// database.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.ErrorContext(r.Context(), "readiness check failed", "error", err)
		respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
