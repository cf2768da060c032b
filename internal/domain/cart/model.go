// Package cart manages the open sale: line items added against the stock
// levels known at add-time, persisted write-through on every mutation.
package cart

import (
	"context"

	"tillpos/internal/core/types"
)

// Item is a product line in the open cart. Price is locked at add-time;
// StockCeiling is the stock level observed when the item entered the cart
// and is the bound for quantity edits until checkout.
type Item struct {
	ProductID     string       `json:"product_id"`
	VariationID   string       `json:"variation_id,omitempty"`
	Name          string       `json:"name"`
	Price         types.Money  `json:"price"`
	OriginalPrice *types.Money `json:"original_price,omitempty"`
	PurchasePrice *types.Money `json:"purchase_price,omitempty"`
	Quantity      int          `json:"quantity"`
	StockCeiling  int          `json:"stock_ceiling"`
}

// Key identifies the item within the cart: composite for variations,
// product id otherwise.
func (i Item) Key() string {
	if i.VariationID != "" {
		return i.ProductID + ":" + i.VariationID
	}
	return i.ProductID
}

// Repository persists the current cart as a whole.
type Repository interface {
	SaveCart(ctx context.Context, items []Item) error
	LoadCart(ctx context.Context) ([]Item, error)
}
