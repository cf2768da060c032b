package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpos/internal/domain/orders"
	"tillpos/internal/infrastructure/http/v1/dto"
)

// OrdersHandler exposes the order fetch coordinator.
type OrdersHandler struct {
	*BaseHandler
	coordinator *orders.Coordinator
}

func NewOrdersHandler(base *BaseHandler, coordinator *orders.Coordinator) *OrdersHandler {
	return &OrdersHandler{BaseHandler: base, coordinator: coordinator}
}

// List fetches one page from the remote order service and returns the
// merged state. A fetch already in flight yields FETCH_IN_PROGRESS.
func (h *OrdersHandler) List(c *gin.Context) {
	var query dto.OrderListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	res, err := h.coordinator.Fetch(c.Request.Context(), query.Filters(), query.MergeMode())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.OrderListResponse{
		Orders:  res.Orders,
		Total:   res.Total,
		HasMore: res.HasMore,
		Changed: res.Changed,
	})
}
