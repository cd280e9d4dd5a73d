// Package handlers holds the plain HTTP endpoints that sit beside the
// tool-dispatch gateway: health, version, and the tool catalog.
package handlers

import (
	"net/http"

	"github.com/bobmcallan/hubgate/internal/common"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	logger *common.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *common.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Health check")

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
