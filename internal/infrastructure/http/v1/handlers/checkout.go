package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tillpos/internal/core/apperror"
	"tillpos/internal/core/id"
	"tillpos/internal/domain/cart"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/checkout"
	"tillpos/internal/domain/invoice"
	"tillpos/internal/infrastructure/http/v1/dto"
	"tillpos/pkg/logger"
)

// CheckoutHandler commits the current cart as an invoice: compute, persist,
// push stock, clear the cart, and kick off a fire-and-forget reconciling
// sync. "Checkout succeeded" is observable before inventory is reconciled.
type CheckoutHandler struct {
	*BaseHandler
	cart     *cart.Service
	invoices *invoice.Service
	catalog  *catalog.Service
}

func NewCheckoutHandler(base *BaseHandler, cartSvc *cart.Service, invoiceSvc *invoice.Service, catalogSvc *catalog.Service) *CheckoutHandler {
	return &CheckoutHandler{
		BaseHandler: base,
		cart:        cartSvc,
		invoices:    invoiceSvc,
		catalog:     catalogSvc,
	}
}

// Checkout handles POST /checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items := h.cart.Lines()
	if len(items) == 0 && len(req.Services) == 0 {
		h.Error(c, apperror.NewValidation("cart is empty"))
		return
	}

	services := make([]checkout.ServiceLine, 0, len(req.Services))
	for _, sv := range req.Services {
		if sv.Amount.IsNegative() {
			h.Error(c, apperror.NewValidation("service amount cannot be negative"))
			return
		}
		services = append(services, checkout.ServiceLine{
			ID:           id.New().String(),
			Description:  sv.Description,
			Amount:       sv.Amount,
			EmployeeID:   sv.EmployeeID,
			EmployeeName: sv.EmployeeName,
		})
	}

	ctx := c.Request.Context()
	inv, err := h.invoices.Checkout(ctx, items, services, req.Params(), req.DeliveryInfo())
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.cart.Clear(ctx); err != nil {
		logger.Warn(ctx, "cart clear after checkout failed", "invoice_id", inv.ID, "error", err)
	}

	// Post-checkout reconciliation; the caller does not wait on it.
	go func() {
		if err := h.catalog.Sync(context.Background(), true); err != nil {
			if !apperror.HasCode(err, apperror.CodeSyncInProgress) {
				logger.Warn(context.Background(), "post-checkout sync failed", "error", err)
			}
		}
	}()

	h.OK(c, inv)
}
