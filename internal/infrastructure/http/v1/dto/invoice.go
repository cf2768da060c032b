package dto

import (
	"tillpos/internal/core/types"
	"tillpos/internal/domain/checkout"
	"tillpos/internal/domain/invoice"
)

// ItemQuantityRequest changes one line's quantity.
type ItemQuantityRequest struct {
	Key      string `json:"key" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

// ItemPriceRequest changes one line's selling price.
type ItemPriceRequest struct {
	Key   string      `json:"key" binding:"required"`
	Price types.Money `json:"price"`
}

// AddLineRequest appends a product line to an existing invoice.
type AddLineRequest struct {
	ProductID     string       `json:"product_id" binding:"required"`
	VariationID   string       `json:"variation_id"`
	Name          string       `json:"name"`
	Price         types.Money  `json:"price"`
	PurchasePrice *types.Money `json:"purchase_price"`
	Quantity      int          `json:"quantity" binding:"required"`
}

// InvoicePatchRequest is one targeted invoice edit. Set fields apply; the
// whole summary is recomputed server-side.
type InvoicePatchRequest struct {
	ItemQuantity    *ItemQuantityRequest    `json:"item_quantity"`
	ItemPrice       *ItemPriceRequest       `json:"item_price"`
	RemoveItemKey   *string                 `json:"remove_item_key"`
	AddItem         *AddLineRequest         `json:"add_item"`
	AddService      *ServiceLineRequest     `json:"add_service"`
	RemoveServiceID *string                 `json:"remove_service_id"`
	Discount        *DiscountRequest        `json:"discount"`
	ExtraFee        *FeeRequest             `json:"extra_fee"`
	DeliveryFee     *types.Money            `json:"delivery_fee"`
	DeliveryPayment *DeliveryPaymentRequest `json:"delivery_payment"`
}

// Patch converts the request into a domain patch. newServiceID supplies the
// id for an added service line.
func (r InvoicePatchRequest) Patch(newServiceID string) invoice.Patch {
	patch := invoice.Patch{
		RemoveItemKey:   r.RemoveItemKey,
		RemoveServiceID: r.RemoveServiceID,
		DeliveryFee:     r.DeliveryFee,
	}
	if r.ItemQuantity != nil {
		patch.SetItemQuantity = &invoice.ItemQuantityPatch{
			Key:      r.ItemQuantity.Key,
			Quantity: r.ItemQuantity.Quantity,
		}
	}
	if r.ItemPrice != nil {
		patch.SetItemPrice = &invoice.ItemPricePatch{
			Key:   r.ItemPrice.Key,
			Price: r.ItemPrice.Price,
		}
	}
	if r.AddItem != nil {
		patch.AddItem = &checkout.LineItem{
			ProductID:     r.AddItem.ProductID,
			VariationID:   r.AddItem.VariationID,
			Name:          r.AddItem.Name,
			Price:         r.AddItem.Price,
			PurchasePrice: r.AddItem.PurchasePrice,
			Quantity:      r.AddItem.Quantity,
		}
	}
	if r.AddService != nil {
		patch.AddService = &checkout.ServiceLine{
			ID:           newServiceID,
			Description:  r.AddService.Description,
			Amount:       r.AddService.Amount,
			EmployeeID:   r.AddService.EmployeeID,
			EmployeeName: r.AddService.EmployeeName,
		}
	}
	if r.Discount != nil {
		mode := r.Discount.ApplyMode
		if mode == "" {
			mode = checkout.ApplyBoth
		}
		patch.Discount = &invoice.DiscountPatch{
			Type:      r.Discount.Type,
			Value:     r.Discount.Value,
			ApplyMode: mode,
		}
	}
	if r.ExtraFee != nil {
		patch.ExtraFee = &invoice.FeePatch{
			Type:  r.ExtraFee.Type,
			Value: r.ExtraFee.Value,
		}
	}
	if r.DeliveryPayment != nil {
		patch.DeliveryPayment = &checkout.DeliveryPayment{
			Status:     r.DeliveryPayment.Status,
			PaidAmount: r.DeliveryPayment.PaidAmount,
		}
	}
	return patch
}
