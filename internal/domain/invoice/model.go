// Package invoice persists completed sales and supports in-place correction.
// Every edit re-derives the whole summary block from items and services with
// the checkout formulas; the summary is never patched field-wise.
package invoice

import (
	"context"
	"time"

	"tillpos/internal/core/types"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/checkout"
)

// SchemaVersionCurrent is the invoice record version. Records below it were
// written before profit tracking existed and get their summary rebuilt at
// read time.
const SchemaVersionCurrent = 2

// Invoice is a persisted sale. ID and Date are fixed at creation; the
// financial fields change only through whole-summary recomputation.
type Invoice struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`

	Items    []checkout.LineItem    `json:"items"`
	Services []checkout.ServiceLine `json:"services,omitempty"`
	Summary  checkout.Summary       `json:"summary"`

	OrderType       checkout.OrderType        `json:"order_type"`
	Delivery        *checkout.DeliveryInfo    `json:"delivery,omitempty"`
	DeliveryPayment *checkout.DeliveryPayment `json:"delivery_payment,omitempty"`
	PaymentStatus   checkout.PaymentStatus    `json:"payment_status"`

	// Synced is false until the remote stock push for this sale is confirmed.
	// An unsynced invoice is the retry signal after a crash or failed push.
	Synced bool `json:"synced"`

	SchemaVersion int `json:"schema_version"`
}

// params rebuilds the checkout parameters stored on the invoice so edits can
// recompute with the exact configuration of the original sale.
func (inv *Invoice) params() checkout.Params {
	return checkout.Params{
		DiscountType:      inv.Summary.Discount.Type,
		DiscountValue:     inv.Summary.Discount.Value,
		DiscountApplyMode: inv.Summary.Discount.ApplyMode,
		ExtraFeeType:      inv.Summary.ExtraFeeType,
		ExtraFeeValue:     inv.Summary.ExtraFeeValue,
		OrderType:         inv.OrderType,
		DeliveryFee:       inv.Summary.DeliveryFee,
		DeliveryPayment:   inv.DeliveryPayment,
	}
}

// Patch is one targeted invoice edit. Exactly the set fields apply; the
// summary is recomputed in full afterwards regardless of which they are.
type Patch struct {
	SetItemQuantity *ItemQuantityPatch
	SetItemPrice    *ItemPricePatch
	RemoveItemKey   *string
	AddItem         *checkout.LineItem

	AddService      *checkout.ServiceLine
	RemoveServiceID *string

	Discount        *DiscountPatch
	ExtraFee        *FeePatch
	DeliveryFee     *types.Money
	DeliveryPayment *checkout.DeliveryPayment
}

type ItemQuantityPatch struct {
	Key      string
	Quantity int
}

type ItemPricePatch struct {
	Key   string
	Price types.Money
}

type DiscountPatch struct {
	Type      checkout.DiscountType
	Value     types.Money
	ApplyMode checkout.ApplyMode
}

type FeePatch struct {
	Type  checkout.FeeType
	Value types.Money
}

// Repository is the durable invoice log, ordered by date descending.
type Repository interface {
	AppendInvoice(ctx context.Context, inv Invoice) error
	SaveInvoice(ctx context.Context, inv Invoice) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
	ClearInvoices(ctx context.Context) error
}

// StockAdjuster pushes signed stock deltas to the remote service and patches
// the local cache optimistically. Satisfied by the stock service.
type StockAdjuster interface {
	ApplyBatch(ctx context.Context, deltas []catalog.StockDelta) error
}
