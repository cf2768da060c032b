package dto

import (
	"tillpos/internal/domain/orders"
)

// OrderListQuery are the order list filters, bound from query parameters.
type OrderListQuery struct {
	Status  string `form:"status"`
	Search  string `form:"search"`
	After   string `form:"after"`
	Before  string `form:"before"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Mode    string `form:"mode" binding:"omitempty,oneof=replace append"`
}

// Filters converts the query into domain filters.
func (q OrderListQuery) Filters() orders.Filters {
	return orders.Filters{
		Status:  q.Status,
		Search:  q.Search,
		After:   q.After,
		Before:  q.Before,
		Page:    q.Page,
		PerPage: q.PerPage,
	}
}

// MergeMode returns the requested merge mode, defaulting to replace.
func (q OrderListQuery) MergeMode() orders.MergeMode {
	if q.Mode == string(orders.MergeAppend) {
		return orders.MergeAppend
	}
	return orders.MergeReplace
}

// OrderListResponse is the merged order state after a fetch.
type OrderListResponse struct {
	Orders  []orders.Order `json:"orders"`
	Total   int            `json:"total"`
	HasMore bool           `json:"has_more"`
	Changed bool           `json:"changed"`
}
