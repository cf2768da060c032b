package dto

import (
	"tillpos/internal/core/types"
	"tillpos/internal/domain/checkout"
)

// ServiceLineRequest is one non-inventory billable line on a checkout.
type ServiceLineRequest struct {
	Description  string      `json:"description" binding:"required"`
	Amount       types.Money `json:"amount"`
	EmployeeID   string      `json:"employee_id"`
	EmployeeName string      `json:"employee_name"`
}

// DiscountRequest configures the checkout discount.
type DiscountRequest struct {
	Type      checkout.DiscountType `json:"type" binding:"required,oneof=percentage fixed"`
	Value     types.Money           `json:"value"`
	ApplyMode checkout.ApplyMode    `json:"apply_mode" binding:"omitempty,oneof=both products services"`
}

// FeeRequest configures the extra fee.
type FeeRequest struct {
	Type  checkout.FeeType `json:"type" binding:"required,oneof=percentage fixed"`
	Value types.Money      `json:"value"`
}

// DeliveryRequest carries delivery order details.
type DeliveryRequest struct {
	Customer string      `json:"customer"`
	Fee      types.Money `json:"fee"`
	Notes    string      `json:"notes"`
}

// DeliveryPaymentRequest is the carrier-side payment state.
type DeliveryPaymentRequest struct {
	Status     checkout.DeliveryPaymentStatus `json:"status" binding:"required,oneof=cash_on_delivery half_paid fully_paid_no_delivery fully_paid"`
	PaidAmount types.Money                    `json:"paid_amount"`
}

// CheckoutRequest commits the current cart as an invoice.
type CheckoutRequest struct {
	Services        []ServiceLineRequest    `json:"services"`
	Discount        *DiscountRequest        `json:"discount"`
	ExtraFee        *FeeRequest             `json:"extra_fee"`
	OrderType       checkout.OrderType      `json:"order_type" binding:"omitempty,oneof=pickup delivery"`
	Delivery        *DeliveryRequest        `json:"delivery"`
	DeliveryPayment *DeliveryPaymentRequest `json:"delivery_payment"`
}

// Params converts the request into calculator parameters.
func (r CheckoutRequest) Params() checkout.Params {
	params := checkout.Params{
		DiscountApplyMode: checkout.ApplyBoth,
		OrderType:         checkout.OrderPickup,
	}
	if r.Discount != nil {
		params.DiscountType = r.Discount.Type
		params.DiscountValue = r.Discount.Value
		if r.Discount.ApplyMode != "" {
			params.DiscountApplyMode = r.Discount.ApplyMode
		}
	}
	if r.ExtraFee != nil {
		params.ExtraFeeType = r.ExtraFee.Type
		params.ExtraFeeValue = r.ExtraFee.Value
	}
	if r.OrderType != "" {
		params.OrderType = r.OrderType
	}
	if r.Delivery != nil {
		params.DeliveryFee = r.Delivery.Fee
	}
	if r.DeliveryPayment != nil {
		params.DeliveryPayment = &checkout.DeliveryPayment{
			Status:     r.DeliveryPayment.Status,
			PaidAmount: r.DeliveryPayment.PaidAmount,
		}
	}
	return params
}

// DeliveryInfo converts the delivery block, when present.
func (r CheckoutRequest) DeliveryInfo() *checkout.DeliveryInfo {
	if r.Delivery == nil {
		return nil
	}
	return &checkout.DeliveryInfo{
		Customer: r.Delivery.Customer,
		Fee:      r.Delivery.Fee,
		Notes:    r.Delivery.Notes,
	}
}
