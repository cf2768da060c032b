package remote

import (
	"context"
	"net/http"

	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/stock"
)

// StockClient implements stock.RemoteClient against the stock endpoints.
type StockClient struct {
	*Client
}

func NewStockClient(c *Client) *StockClient {
	return &StockClient{Client: c}
}

type stockUpdateEntry struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Adjustment  int    `json:"adjustment"`
}

type stockUpdateRequest struct {
	Updates []stockUpdateEntry `json:"updates"`
}

type stockUpdateResponse struct {
	Updated int `json:"updated"`
	Details []struct {
		ProductID string `json:"product_id"`
		Status    string `json:"status"`
	} `json:"details"`
}

type stockVerifyEntry struct {
	ProductID        string `json:"product_id"`
	VariationID      string `json:"variation_id,omitempty"`
	ExpectedQuantity int    `json:"expected_quantity"`
}

type stockVerifyRequest struct {
	Updates []stockVerifyEntry `json:"updates"`
}

type stockVerifyResponse struct {
	Results []struct {
		ProductID string `json:"product_id"`
		Matches   bool   `json:"matches"`
	} `json:"results"`
}

// PushAdjustments sends the whole batch in one request. A 207 response
// carries per-item statuses and maps onto PushResult.Details.
func (c *StockClient) PushAdjustments(ctx context.Context, deltas []catalog.StockDelta) (*stock.PushResult, error) {
	req := stockUpdateRequest{Updates: make([]stockUpdateEntry, 0, len(deltas))}
	for _, d := range deltas {
		req.Updates = append(req.Updates, stockUpdateEntry{
			ProductID:   d.ProductID,
			VariationID: d.VariationID,
			Adjustment:  d.Delta,
		})
	}

	var resp stockUpdateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/stock/update", nil, req, &resp); err != nil {
		return nil, err
	}

	result := &stock.PushResult{Updated: resp.Updated}
	for _, d := range resp.Details {
		result.Details = append(result.Details, stock.ItemStatus{
			ProductID: d.ProductID,
			Status:    d.Status,
		})
	}
	return result, nil
}

// VerifyStock re-reads remote stock and compares it against expected levels.
func (c *StockClient) VerifyStock(ctx context.Context, expectations []stock.Expectation) ([]stock.VerifyResult, error) {
	req := stockVerifyRequest{Updates: make([]stockVerifyEntry, 0, len(expectations))}
	for _, e := range expectations {
		req.Updates = append(req.Updates, stockVerifyEntry{
			ProductID:        e.ProductID,
			VariationID:      e.VariationID,
			ExpectedQuantity: e.ExpectedQuantity,
		})
	}

	var resp stockVerifyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/stock/verify", nil, req, &resp); err != nil {
		return nil, err
	}

	results := make([]stock.VerifyResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, stock.VerifyResult{ProductID: r.ProductID, Matches: r.Matches})
	}
	return results, nil
}
