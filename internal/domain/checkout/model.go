// Package checkout converts a cart, service lines and payment parameters
// into a fully itemized invoice summary. All functions are pure: the same
// formulas back both checkout-time computation and later invoice edits.
package checkout

import (
	"tillpos/internal/core/types"
)

// LineItem is a billable product line. Price is the selling price locked at
// add-time; OriginalPrice is only set when a higher regular price indicates
// an active discount; PurchasePrice may be unknown for legacy products.
type LineItem struct {
	ProductID     string       `json:"product_id"`
	VariationID   string       `json:"variation_id,omitempty"`
	Name          string       `json:"name"`
	Price         types.Money  `json:"price"`
	OriginalPrice *types.Money `json:"original_price,omitempty"`
	PurchasePrice *types.Money `json:"purchase_price,omitempty"`
	Quantity      int          `json:"quantity"`
}

// ServiceLine is a non-inventory billable item (labor, fee).
type ServiceLine struct {
	ID           string      `json:"id"`
	Description  string      `json:"description"`
	Amount       types.Money `json:"amount"`
	EmployeeID   string      `json:"employee_id,omitempty"`
	EmployeeName string      `json:"employee_name,omitempty"`
}

// DiscountType selects between percentage and fixed-amount discounts.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// ApplyMode selects the discount base.
type ApplyMode string

const (
	ApplyBoth     ApplyMode = "both"
	ApplyProducts ApplyMode = "products"
	ApplyServices ApplyMode = "services"
)

// FeeType selects between percentage and fixed extra fees.
type FeeType string

const (
	FeePercentage FeeType = "percentage"
	FeeFixed      FeeType = "fixed"
)

// OrderType distinguishes walk-in sales from delivery orders.
type OrderType string

const (
	OrderPickup   OrderType = "pickup"
	OrderDelivery OrderType = "delivery"
)

// DeliveryPaymentStatus is the carrier-side payment state of a delivery order.
type DeliveryPaymentStatus string

const (
	DeliveryCashOnDelivery     DeliveryPaymentStatus = "cash_on_delivery"
	DeliveryHalfPaid           DeliveryPaymentStatus = "half_paid"
	DeliveryFullyPaidNoDeliver DeliveryPaymentStatus = "fully_paid_no_delivery"
	DeliveryFullyPaid          DeliveryPaymentStatus = "fully_paid"
)

// PaymentStatus is the invoice-level payment state.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaidFull PaymentStatus = "paid_full"
)

// DeliveryPayment tracks partial payment on delivery orders.
type DeliveryPayment struct {
	Status          DeliveryPaymentStatus `json:"status"`
	PaidAmount      types.Money           `json:"paid_amount"`
	RemainingAmount types.Money           `json:"remaining_amount"`
}

// DeliveryInfo carries delivery order details.
type DeliveryInfo struct {
	Customer string      `json:"customer"`
	Fee      types.Money `json:"fee"`
	Notes    string      `json:"notes,omitempty"`
}

// Discount is the discount configuration plus the amount it resolved to.
type Discount struct {
	Type      DiscountType `json:"type"`
	Value     types.Money  `json:"value"`
	Amount    types.Money  `json:"amount"`
	ApplyMode ApplyMode    `json:"apply_mode"`
}

// Summary is the full financial block of an invoice. It is always derived
// in one piece from items + services + parameters, never patched field-wise.
type Summary struct {
	ProductsSubtotal types.Money `json:"products_subtotal"`
	ServicesTotal    types.Money `json:"services_total"`
	Subtotal         types.Money `json:"subtotal"`
	Discount         Discount    `json:"discount"`
	ExtraFee         types.Money `json:"extra_fee"`
	ExtraFeeType     FeeType     `json:"extra_fee_type"`
	ExtraFeeValue    types.Money `json:"extra_fee_value"`
	DeliveryFee      types.Money `json:"delivery_fee"`
	Total            types.Money `json:"total"`

	TotalProfit         types.Money `json:"total_profit"`
	ProductsProfit      types.Money `json:"products_profit"`
	FinalProductsProfit types.Money `json:"final_products_profit"`
	FinalServicesProfit types.Money `json:"final_services_profit"`

	// Product ids excluded from profit totals because their purchase price
	// is unknown. Recorded for display, not assumed to be zero profit.
	ProfitUnknownItems []string `json:"profit_unknown_items,omitempty"`
}

// Params are the payment parameters of a checkout or invoice recomputation.
type Params struct {
	DiscountType      DiscountType
	DiscountValue     types.Money
	DiscountApplyMode ApplyMode

	ExtraFeeType  FeeType
	ExtraFeeValue types.Money

	OrderType       OrderType
	DeliveryFee     types.Money
	DeliveryPayment *DeliveryPayment
}

// Result is a computed invoice draft.
type Result struct {
	Summary         Summary
	PaymentStatus   PaymentStatus
	DeliveryPayment *DeliveryPayment
}
