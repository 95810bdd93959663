package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-blog/internal/logger"
)

// Pinger checks the database connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse reports service health
// swagger:model HealthResponse
type HealthResponse struct {
	// default: ok
	Status string `json:"status"`
}

// NewHealthHandler reports whether the database answers pings.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} handlers.HealthResponse "Database reachable"
// @Failure 503 {object} handlers.HealthResponse "Database unreachable"
// @Router /healthz [get]
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Log.Errorw("health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
			return
		}

		writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
