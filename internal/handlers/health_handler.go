package handlers

import (
	"net/http"

	"taskhive/internal/config"
	"taskhive/internal/database"
)

// HealthHandler reports process health and wired capabilities
type HealthHandler struct {
	db   *database.DB
	caps config.Capabilities
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, caps config.Capabilities) *HealthHandler {
	return &HealthHandler{db: db, caps: caps}
}

// Health returns 200 when the database answers, 503 otherwise. The
// capabilities block reflects what the process was wired with at startup.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	dbState := "ok"
	if err := h.db.Ping(); err != nil {
		status = http.StatusServiceUnavailable
		dbState = "unreachable"
	}

	writeJSON(w, status, map[string]interface{}{
		"status":   dbState,
		"database": h.caps.DatabaseType,
		"email":    h.caps.EmailEnabled,
	})
}
