package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	db Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health reports whether the database answers
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		logrus.WithError(err).Error("Health check failed")
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		logrus.WithError(err).Warn("Failed to write health response")
	}
}
