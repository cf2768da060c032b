package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpos/internal/domain/cart"
	"tillpos/internal/infrastructure/http/v1/dto"
)

// CartHandler exposes the cart manager.
type CartHandler struct {
	*BaseHandler
	cart *cart.Service
}

func NewCartHandler(base *BaseHandler, svc *cart.Service) *CartHandler {
	return &CartHandler{BaseHandler: base, cart: svc}
}

// Get returns the current cart.
func (h *CartHandler) Get(c *gin.Context) {
	h.OK(c, dto.CartResponse{Items: h.cart.Items()})
}

// AddItem puts one unit of a product into the cart.
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.cart.Add(c.Request.Context(), req.ProductID, req.VariationID); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CartResponse{Items: h.cart.Items()})
}

// UpdateQuantity sets an item's quantity.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req dto.UpdateQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.cart.UpdateQuantity(c.Request.Context(), c.Param("key"), req.Quantity); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CartResponse{Items: h.cart.Items()})
}

// RemoveItem drops an item.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	if err := h.cart.Remove(c.Request.Context(), c.Param("key")); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CartResponse{Items: h.cart.Items()})
}

// Clear empties the cart.
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cart.Clear(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
