package invoice

import (
	"context"
	"time"

	"tillpos/internal/core/apperror"
	"tillpos/internal/core/id"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/checkout"
	"tillpos/pkg/logger"
)

// Service owns the invoice log. Checkout and every later edit run through
// the same recomputation path so summaries can never drift from their lines.
type Service struct {
	repo     Repository
	adjuster StockAdjuster
	now      func() time.Time
}

func NewService(repo Repository, adjuster StockAdjuster) *Service {
	return &Service{repo: repo, adjuster: adjuster, now: time.Now}
}

// Checkout computes and persists a new invoice, then pushes the sold
// quantities to the remote stock service. The invoice is the record of a
// sale that already happened: a failed push leaves it saved with
// synced=false for retry, it never rolls the sale back.
func (s *Service) Checkout(
	ctx context.Context,
	items []checkout.LineItem,
	services []checkout.ServiceLine,
	params checkout.Params,
	delivery *checkout.DeliveryInfo,
) (Invoice, error) {
	if len(items) == 0 && len(services) == 0 {
		return Invoice{}, apperror.NewValidation("nothing to check out")
	}

	res, err := checkout.Compute(items, services, params)
	if err != nil {
		return Invoice{}, err
	}

	now := s.now()
	inv := Invoice{
		ID:              id.InvoiceToken(now),
		Date:            now,
		Items:           items,
		Services:        services,
		Summary:         res.Summary,
		OrderType:       params.OrderType,
		Delivery:        delivery,
		DeliveryPayment: res.DeliveryPayment,
		PaymentStatus:   res.PaymentStatus,
		SchemaVersion:   SchemaVersionCurrent,
	}

	if err := s.repo.AppendInvoice(ctx, inv); err != nil {
		return Invoice{}, err
	}

	inv.Synced = s.pushDeltas(ctx, inv.ID, saleDeltas(items))
	if inv.Synced {
		if err := s.repo.SaveInvoice(ctx, inv); err != nil {
			return Invoice{}, err
		}
	}

	return inv, nil
}

// Get loads one invoice, upgrading legacy records on the way out.
func (s *Service) Get(ctx context.Context, invoiceID string) (Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if inv == nil {
		return Invoice{}, apperror.NewNotFound("invoice", invoiceID)
	}
	s.migrate(inv)
	return *inv, nil
}

// List returns the invoice log, newest first.
func (s *Service) List(ctx context.Context) ([]Invoice, error) {
	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		s.migrate(&invoices[i])
	}
	return invoices, nil
}

// Mutate applies a targeted edit and re-derives the entire summary from the
// updated lines. Quantity and line-removal edits also issue a compensating
// stock adjustment with the opposite sign so local corrections stay
// reflected in remote inventory.
func (s *Service) Mutate(ctx context.Context, invoiceID string, patch Patch) (Invoice, error) {
	stored, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if stored == nil {
		return Invoice{}, apperror.NewNotFound("invoice", invoiceID)
	}
	s.migrate(stored)

	inv := *stored
	inv.Items = append([]checkout.LineItem(nil), stored.Items...)
	inv.Services = append([]checkout.ServiceLine(nil), stored.Services...)

	if err := applyPatch(&inv, patch); err != nil {
		return Invoice{}, err
	}

	res, err := checkout.Compute(inv.Items, inv.Services, inv.params())
	if err != nil {
		return Invoice{}, err
	}
	inv.Summary = res.Summary
	inv.PaymentStatus = res.PaymentStatus
	inv.DeliveryPayment = res.DeliveryPayment

	compensations := compensationDeltas(stored.Items, inv.Items)
	pushOK := true
	if len(compensations) > 0 {
		pushOK = s.pushDeltas(ctx, inv.ID, compensations)
	}
	// A compensation push covers only the edit's own delta; it cannot vouch
	// for the original sale's deltas. An unsynced invoice stays unsynced
	// until RetrySync confirms the full set.
	inv.Synced = stored.Synced && pushOK

	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

// MarkSynced flips the sync flag. Idempotent; financial fields untouched.
func (s *Service) MarkSynced(ctx context.Context, invoiceID string) error {
	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return apperror.NewNotFound("invoice", invoiceID)
	}
	if inv.Synced {
		return nil
	}
	inv.Synced = true
	return s.repo.SaveInvoice(ctx, *inv)
}

// RetrySync re-pushes the stock deltas of an unsynced invoice.
func (s *Service) RetrySync(ctx context.Context, invoiceID string) (Invoice, error) {
	stored, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return Invoice{}, err
	}
	if stored == nil {
		return Invoice{}, apperror.NewNotFound("invoice", invoiceID)
	}
	if stored.Synced {
		return *stored, nil
	}

	inv := *stored
	inv.Synced = s.pushDeltas(ctx, inv.ID, saleDeltas(inv.Items))
	if !inv.Synced {
		return inv, apperror.NewStockUpdateFailed(nil)
	}
	if err := s.repo.SaveInvoice(ctx, inv); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

// Clear wipes the whole invoice log. The only destructive operation.
func (s *Service) Clear(ctx context.Context) error {
	return s.repo.ClearInvoices(ctx)
}

// pushDeltas sends stock deltas and reports whether the invoice may be
// considered synced. A partial confirmation is good enough to proceed; the
// unconfirmed items are reconciled by the next sync.
func (s *Service) pushDeltas(ctx context.Context, invoiceID string, deltas []catalog.StockDelta) bool {
	if len(deltas) == 0 {
		return true
	}
	err := s.adjuster.ApplyBatch(ctx, deltas)
	if err == nil {
		return true
	}
	if apperror.HasCode(err, apperror.CodeStockUpdatePartial) {
		logger.Warn(ctx, "stock push partially confirmed", "invoice_id", invoiceID, "error", err)
		return true
	}
	logger.Warn(ctx, "stock push failed, invoice left unsynced", "invoice_id", invoiceID, "error", err)
	return false
}

// migrate upgrades a legacy record by rebuilding its summary with the
// current formulas. Old invoices predate profit tracking; recomputing from
// items and services fills those fields retroactively.
func (s *Service) migrate(inv *Invoice) {
	if inv.SchemaVersion >= SchemaVersionCurrent {
		return
	}
	res, err := checkout.Compute(inv.Items, inv.Services, inv.params())
	if err != nil {
		logger.Warn(context.Background(), "legacy invoice summary rebuild failed",
			"invoice_id", inv.ID, "error", err)
		return
	}
	inv.Summary = res.Summary
	inv.SchemaVersion = SchemaVersionCurrent
}

func applyPatch(inv *Invoice, patch Patch) error {
	if p := patch.SetItemQuantity; p != nil {
		if p.Quantity < 1 {
			return apperror.NewValidation("quantity must be at least 1")
		}
		i, ok := findItem(inv.Items, p.Key)
		if !ok {
			return apperror.NewNotFound("invoice item", p.Key)
		}
		inv.Items[i].Quantity = p.Quantity
	}

	if p := patch.SetItemPrice; p != nil {
		if p.Price.IsNegative() {
			return apperror.NewValidation("price cannot be negative")
		}
		i, ok := findItem(inv.Items, p.Key)
		if !ok {
			return apperror.NewNotFound("invoice item", p.Key)
		}
		inv.Items[i].Price = p.Price
	}

	if key := patch.RemoveItemKey; key != nil {
		i, ok := findItem(inv.Items, *key)
		if !ok {
			return apperror.NewNotFound("invoice item", *key)
		}
		inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
	}

	if item := patch.AddItem; item != nil {
		if item.Quantity < 1 {
			return apperror.NewValidation("quantity must be at least 1")
		}
		inv.Items = append(inv.Items, *item)
	}

	if sv := patch.AddService; sv != nil {
		if sv.Amount.IsNegative() {
			return apperror.NewValidation("service amount cannot be negative")
		}
		inv.Services = append(inv.Services, *sv)
	}

	if svcID := patch.RemoveServiceID; svcID != nil {
		found := false
		for i := range inv.Services {
			if inv.Services[i].ID == *svcID {
				inv.Services = append(inv.Services[:i], inv.Services[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return apperror.NewNotFound("service line", *svcID)
		}
	}

	if d := patch.Discount; d != nil {
		inv.Summary.Discount.Type = d.Type
		inv.Summary.Discount.Value = d.Value
		inv.Summary.Discount.ApplyMode = d.ApplyMode
	}

	if f := patch.ExtraFee; f != nil {
		inv.Summary.ExtraFeeType = f.Type
		inv.Summary.ExtraFeeValue = f.Value
	}

	if fee := patch.DeliveryFee; fee != nil {
		if fee.IsNegative() {
			return apperror.NewValidation("delivery fee cannot be negative")
		}
		inv.Summary.DeliveryFee = *fee
		if inv.Delivery != nil {
			inv.Delivery.Fee = *fee
		}
	}

	if dp := patch.DeliveryPayment; dp != nil {
		inv.DeliveryPayment = dp
	}

	return nil
}

func findItem(items []checkout.LineItem, key string) (int, bool) {
	for i := range items {
		k := items[i].ProductID
		if items[i].VariationID != "" {
			k = items[i].ProductID + ":" + items[i].VariationID
		}
		if k == key {
			return i, true
		}
	}
	return 0, false
}

// saleDeltas converts invoice lines into the consuming stock deltas of a sale.
func saleDeltas(items []checkout.LineItem) []catalog.StockDelta {
	deltas := make([]catalog.StockDelta, 0, len(items))
	for _, it := range items {
		deltas = append(deltas, catalog.StockDelta{
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Delta:       -it.Quantity,
		})
	}
	return deltas
}

// compensationDeltas diffs item quantities before and after an edit. A
// lowered or removed quantity returns stock (positive delta); a raised or
// added one consumes it.
func compensationDeltas(before, after []checkout.LineItem) []catalog.StockDelta {
	type ref struct {
		item checkout.LineItem
		qty  int
	}

	counts := make(map[string]*ref, len(before))
	keyOf := func(it checkout.LineItem) string {
		if it.VariationID != "" {
			return it.ProductID + ":" + it.VariationID
		}
		return it.ProductID
	}

	for _, it := range before {
		counts[keyOf(it)] = &ref{item: it, qty: it.Quantity}
	}
	for _, it := range after {
		if r, ok := counts[keyOf(it)]; ok {
			r.qty -= it.Quantity
			continue
		}
		counts[keyOf(it)] = &ref{item: it, qty: -it.Quantity}
	}

	var deltas []catalog.StockDelta
	for _, it := range before {
		k := keyOf(it)
		r := counts[k]
		if r == nil || r.qty == 0 {
			continue
		}
		deltas = append(deltas, catalog.StockDelta{
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Delta:       r.qty,
		})
		delete(counts, k)
	}
	for _, it := range after {
		k := keyOf(it)
		r := counts[k]
		if r == nil || r.qty == 0 {
			continue
		}
		deltas = append(deltas, catalog.StockDelta{
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Delta:       r.qty,
		})
		delete(counts, k)
	}
	return deltas
}
