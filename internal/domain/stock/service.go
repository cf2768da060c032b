// Package stock pushes batched stock deltas to the remote inventory service.
// The local cache is patched optimistically before the push; the remote
// response is read in three tiers (full, partial, failed-then-verify).
package stock

import (
	"context"

	"tillpos/internal/core/apperror"
	"tillpos/internal/domain/catalog"
	"tillpos/pkg/logger"
)

// Item confirmation statuses reported by the remote service.
const (
	StatusUpdated  = "updated"
	StatusVerified = "verified"
	StatusFailed   = "failed"
)

// PushResult is the remote response to an adjustment batch. Details is nil
// on full success and lists per-item statuses on a partial one.
type PushResult struct {
	Updated int
	Details []ItemStatus
}

type ItemStatus struct {
	ProductID string
	Status    string
}

// Expectation is a post-adjustment stock level to verify remotely.
type Expectation struct {
	ProductID        string
	VariationID      string
	ExpectedQuantity int
}

type VerifyResult struct {
	ProductID string
	Matches   bool
}

// RemoteClient is the wire client for the stock endpoints.
type RemoteClient interface {
	PushAdjustments(ctx context.Context, deltas []catalog.StockDelta) (*PushResult, error)
	VerifyStock(ctx context.Context, expectations []Expectation) ([]VerifyResult, error)
}

// LocalStock is the cached product state patched alongside the remote push.
// Satisfied by the catalog service.
type LocalStock interface {
	AdjustStock(ctx context.Context, deltas []catalog.StockDelta) error
	StockQuantity(productID, variationID string) (int, bool)
}

// Service is the stock adjustment client.
type Service struct {
	remote RemoteClient
	local  LocalStock
}

func NewService(remote RemoteClient, local LocalStock) *Service {
	return &Service{remote: remote, local: local}
}

// ApplyBatch patches local stock immediately and sends the whole batch in
// one request. Return value by tier:
//   - nil: every item confirmed, or confirmation lost but verification
//     matched the expected levels (implicit success);
//   - StockUpdatePartial: some items confirmed, the rest listed for retry;
//     callers may proceed;
//   - StockUpdateFailed: nothing confirmed and verification disproved or
//     could not prove the update. Local optimistic state stays in place and
//     the next sync reconciles it.
func (s *Service) ApplyBatch(ctx context.Context, deltas []catalog.StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	if err := s.local.AdjustStock(ctx, deltas); err != nil {
		logger.Warn(ctx, "optimistic stock patch failed", "error", err)
	}

	res, err := s.remote.PushAdjustments(ctx, deltas)
	if err != nil {
		return s.verifyFallback(ctx, deltas, err)
	}

	if len(res.Details) == 0 {
		logger.Info(ctx, "stock batch confirmed", "updated", res.Updated)
		return nil
	}

	var failedIDs []string
	confirmed := 0
	for _, d := range res.Details {
		switch d.Status {
		case StatusUpdated, StatusVerified:
			confirmed++
		default:
			failedIDs = append(failedIDs, d.ProductID)
		}
	}

	if confirmed == 0 {
		return s.verifyFallback(ctx, deltas, apperror.NewStockUpdateFailed(nil))
	}
	if len(failedIDs) == 0 {
		return nil
	}
	return apperror.NewStockUpdatePartial(confirmed, len(res.Details), failedIDs)
}

// verifyFallback handles a push with no confirmed items: the update may have
// landed even though the response was lost. Re-reading remote stock and
// matching it against the expected post-adjustment levels counts as success.
func (s *Service) verifyFallback(ctx context.Context, deltas []catalog.StockDelta, cause error) error {
	expectations := make([]Expectation, 0, len(deltas))
	for _, d := range deltas {
		qty, ok := s.local.StockQuantity(d.ProductID, d.VariationID)
		if !ok {
			return apperror.NewStockUpdateFailed(cause)
		}
		expectations = append(expectations, Expectation{
			ProductID:        d.ProductID,
			VariationID:      d.VariationID,
			ExpectedQuantity: qty,
		})
	}

	results, err := s.remote.VerifyStock(ctx, expectations)
	if err != nil {
		return apperror.NewStockUpdateFailed(cause).WithDetail("verify_error", err.Error())
	}

	for _, r := range results {
		if !r.Matches {
			return apperror.NewStockUpdateFailed(cause).WithDetail("mismatched_product_id", r.ProductID)
		}
	}

	logger.Info(ctx, "stock batch verified after lost confirmation", "items", len(expectations))
	return nil
}
