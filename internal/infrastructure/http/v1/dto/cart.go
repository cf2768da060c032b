package dto

import (
	"tillpos/internal/domain/cart"
)

// AddItemRequest puts one unit of a product into the cart.
type AddItemRequest struct {
	ProductID   string `json:"product_id" binding:"required"`
	VariationID string `json:"variation_id"`
}

// UpdateQuantityRequest sets an item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// CartResponse is the current cart contents.
type CartResponse struct {
	Items []cart.Item `json:"items"`
}
