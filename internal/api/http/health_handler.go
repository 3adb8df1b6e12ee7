package http

import (
	"context"
	"net/http"
	"time"

	"library-circulation-backend/internal/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok"}
	if err := h.db.Ping(ctx); err != nil {
		logger.ErrorContext(r.Context(), "Health check failed", "error", err)
		status["status"] = "degraded"
		status["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, envelope{Message: "database unreachable", Data: status})
		return
	}
	writeData(w, http.StatusOK, "", status)
}
