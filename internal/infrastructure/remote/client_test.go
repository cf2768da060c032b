package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpos/internal/core/apperror"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/orders"
	"tillpos/internal/domain/stock"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Token: "test-token"})
}

func TestFetchCatalogFull(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/catalog", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("mode"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"products":   []map[string]any{{"id": "1", "name": "Widget", "price": "10.50", "stock_quantity": 3}},
			"categories": []map[string]any{{"id": "c1", "name": "Tools"}},
			"metadata":   map[string]any{"sync_timestamp": "2026-08-30T10:00:00Z"},
		})
	})

	got, err := NewCatalogClient(client).FetchCatalog(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Products, 1)
	assert.Equal(t, "Widget", got.Products[0].Name)
	assert.Equal(t, 3, got.Products[0].StockQuantity)
	assert.Equal(t, "2026-08-30T10:00:00Z", got.SyncTimestamp)
}

func TestFetchChangesSendsCursor(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "t1", r.URL.Query().Get("since"))
		json.NewEncoder(w).Encode(map[string]any{
			"updates":  []map[string]any{{"action": "deleted", "id": "2"}},
			"metadata": map[string]any{"sync_timestamp": "t2"},
		})
	})

	got, err := NewCatalogClient(client).FetchChanges(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, got.Updates, 1)
	assert.Equal(t, catalog.ChangeDeleted, got.Updates[0].Action)
	assert.Equal(t, "t2", got.SyncTimestamp)
}

func TestPushAdjustmentsFullSuccess(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Updates []map[string]any `json:"updates"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Updates, 2)
		assert.Equal(t, float64(-2), req.Updates[0]["adjustment"])

		json.NewEncoder(w).Encode(map[string]any{"updated": 2})
	})

	res, err := NewStockClient(client).PushAdjustments(context.Background(), []catalog.StockDelta{
		{ProductID: "1", Delta: -2},
		{ProductID: "2", VariationID: "v1", Delta: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.Empty(t, res.Details)
}

func TestPushAdjustmentsMultiStatus(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMultiStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"details": []map[string]any{
				{"product_id": "1", "status": "updated"},
				{"product_id": "2", "status": "failed"},
			},
		})
	})

	res, err := NewStockClient(client).PushAdjustments(context.Background(), []catalog.StockDelta{
		{ProductID: "1", Delta: -1},
		{ProductID: "2", Delta: -1},
	})
	require.NoError(t, err)
	require.Len(t, res.Details, 2)
	assert.Equal(t, stock.StatusUpdated, res.Details[0].Status)
	assert.Equal(t, stock.StatusFailed, res.Details[1].Status)
}

func TestVerifyStock(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Updates []map[string]any `json:"updates"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(5), req.Updates[0]["expected_quantity"])

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"product_id": "1", "matches": true}},
		})
	})

	got, err := NewStockClient(client).VerifyStock(context.Background(), []stock.Expectation{
		{ProductID: "1", ExpectedQuantity: 5},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Matches)
}

func TestFetchOrdersQueryAndPaging(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "processing", q.Get("status"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "25", q.Get("per_page"))

		json.NewEncoder(w).Encode(map[string]any{
			"orders":      []map[string]any{{"id": "o1", "number": "#100", "status": "processing", "total": "42"}},
			"total":       51,
			"page":        2,
			"total_pages": 3,
			"has_more":    true,
		})
	})

	got, err := NewOrdersClient(client).FetchOrders(context.Background(), orders.Filters{
		Status: "processing", Page: 2, PerPage: 25,
	})
	require.NoError(t, err)
	require.Len(t, got.Orders, 1)
	assert.Equal(t, "o1", got.Orders[0].ID)
	assert.Equal(t, 51, got.Total)
	assert.True(t, got.HasMore)
}

func TestServerErrorIsRemoteUnavailable(t *testing.T) {
	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := NewCatalogClient(client).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeRemoteUnavailable))
}
