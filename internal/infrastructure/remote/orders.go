package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tillpos/internal/core/types"
	"tillpos/internal/domain/orders"
)

// OrdersClient implements orders.RemoteAPI against the order list endpoint.
type OrdersClient struct {
	*Client
}

func NewOrdersClient(c *Client) *OrdersClient {
	return &OrdersClient{Client: c}
}

type orderEntry struct {
	ID        string      `json:"id"`
	Number    string      `json:"number"`
	Status    string      `json:"status"`
	Customer  string      `json:"customer"`
	Total     types.Money `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}

type orderListResponse struct {
	Orders     []orderEntry `json:"orders"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	HasMore    bool         `json:"has_more"`
}

// FetchOrders pulls one page of the remote order listing.
func (c *OrdersClient) FetchOrders(ctx context.Context, filters orders.Filters) (*orders.Page, error) {
	query := url.Values{}
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	if filters.Search != "" {
		query.Set("search", filters.Search)
	}
	if filters.After != "" {
		query.Set("after", filters.After)
	}
	if filters.Before != "" {
		query.Set("before", filters.Before)
	}
	if filters.Page > 0 {
		query.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(filters.PerPage))
	}

	var resp orderListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/orders", query, nil, &resp); err != nil {
		return nil, err
	}

	page := &orders.Page{
		Orders:     make([]orders.Order, 0, len(resp.Orders)),
		Total:      resp.Total,
		PageNumber: resp.Page,
		TotalPages: resp.TotalPages,
		HasMore:    resp.HasMore,
	}
	for _, o := range resp.Orders {
		page.Orders = append(page.Orders, orders.Order{
			ID:        o.ID,
			Number:    o.Number,
			Status:    o.Status,
			Customer:  o.Customer,
			Total:     o.Total,
			CreatedAt: o.CreatedAt,
		})
	}
	return page, nil
}
