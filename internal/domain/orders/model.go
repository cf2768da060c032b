// Package orders fetches remote order lists with an in-flight guard and
// merges pages into application state without churning unchanged data.
package orders

import (
	"context"
	"time"

	"tillpos/internal/core/types"
)

// Order is one remote order as listed by the order endpoint.
type Order struct {
	ID        string      `json:"id"`
	Number    string      `json:"number"`
	Status    string      `json:"status"`
	Customer  string      `json:"customer"`
	Total     types.Money `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}

// Filters narrow the remote order listing.
type Filters struct {
	Status  string
	Search  string
	After   string
	Before  string
	Page    int
	PerPage int
}

// Page is one page of the remote order listing.
type Page struct {
	Orders     []Order
	Total      int
	PageNumber int
	TotalPages int
	HasMore    bool
}

// MergeMode selects how a fetched page lands in local state.
type MergeMode string

const (
	// MergeReplace swaps the list, but only when the fetched set actually
	// differs by identity or count from the current one.
	MergeReplace MergeMode = "replace"
	// MergeAppend concatenates a load-more page, deduplicated by id.
	MergeAppend MergeMode = "append"
)

// RemoteAPI is the wire client for the order list endpoint.
type RemoteAPI interface {
	FetchOrders(ctx context.Context, filters Filters) (*Page, error)
}

// Result reports a completed fetch. Changed is false when polling returned
// an identical set and local state was left untouched.
type Result struct {
	Orders  []Order
	Total   int
	HasMore bool
	Changed bool
}
