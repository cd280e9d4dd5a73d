package handlers

import (
	"net/http"

	"github.com/bobmcallan/hubgate/internal/common"
	"github.com/bobmcallan/hubgate/internal/tools"
)

// CatalogHandler serves the registered tool catalog so clients can
// enumerate tools and their argument schemas.
type CatalogHandler struct {
	registry *tools.Registry
	logger   *common.Logger
}

// NewCatalogHandler creates a new catalog handler over the registry.
func NewCatalogHandler(registry *tools.Registry, logger *common.Logger) *CatalogHandler {
	return &CatalogHandler{registry: registry, logger: logger}
}

// ServeHTTP handles GET /tools.
func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	catalog := h.registry.List()
	h.logger.Debug().Int("tools", len(catalog)).Msg("Catalog requested")

	WriteJSON(w, http.StatusOK, map[string]any{
		"tools": catalog,
	})
}
