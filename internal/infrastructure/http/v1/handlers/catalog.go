package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpos/internal/domain/catalog"
)

// CatalogHandler serves the cached product snapshot and sync triggers.
type CatalogHandler struct {
	*BaseHandler
	catalog *catalog.Service
}

func NewCatalogHandler(base *BaseHandler, svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, catalog: svc}
}

// Products returns the cached snapshot immediately; a stale cache triggers a
// background refresh without delaying the response.
func (h *CatalogHandler) Products(c *gin.Context) {
	snap := h.catalog.Snapshot(c.Request.Context())
	h.OK(c, snap)
}

// Sync runs a full or delta sync. mode=full forces a full resynchronization;
// anything else lets the cursor decide.
func (h *CatalogHandler) Sync(c *gin.Context) {
	full := c.Query("mode") == "full"
	if err := h.catalog.Sync(c.Request.Context(), full); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "synchronized")
}
