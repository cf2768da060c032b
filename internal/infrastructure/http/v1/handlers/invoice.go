package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpos/internal/core/id"
	"tillpos/internal/domain/invoice"
	"tillpos/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler exposes the invoice log.
type InvoiceHandler struct {
	*BaseHandler
	invoices *invoice.Service
}

func NewInvoiceHandler(base *BaseHandler, svc *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, invoices: svc}
}

// List returns the invoice log, newest first.
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.invoices.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, invoices)
}

// Get returns one invoice.
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Patch applies one targeted edit and returns the recomputed invoice.
func (h *InvoiceHandler) Patch(c *gin.Context) {
	var req dto.InvoicePatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.invoices.Mutate(c.Request.Context(), c.Param("id"), req.Patch(id.New().String()))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// RetrySync re-pushes the stock deltas of an unsynced invoice.
func (h *InvoiceHandler) RetrySync(c *gin.Context) {
	inv, err := h.invoices.RetrySync(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Clear wipes the whole invoice log.
func (h *InvoiceHandler) Clear(c *gin.Context) {
	if err := h.invoices.Clear(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
