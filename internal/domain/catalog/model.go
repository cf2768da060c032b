// Package catalog provides the cached product set and the engine that keeps
// it synchronized with the remote inventory service.
package catalog

import (
	"time"

	"tillpos/internal/core/types"
)

// Product is one sellable item in the catalog snapshot. A variation is
// addressed by parent_id + variation_id; plain products by id alone.
type Product struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Price         types.Money  `json:"price"`
	RegularPrice  *types.Money `json:"regular_price,omitempty"`
	PurchasePrice *types.Money `json:"purchase_price,omitempty"`
	StockQuantity int          `json:"stock_quantity"`
	VariationID   string       `json:"variation_id,omitempty"`
	ParentID      string       `json:"parent_id,omitempty"`
	CategoryID    string       `json:"category_id,omitempty"`
}

// Key returns the identity used for cache lookups: the composite
// parent/variation pair for variations, the plain id otherwise.
func (p Product) Key() string {
	if p.VariationID != "" && p.ParentID != "" {
		return p.ParentID + ":" + p.VariationID
	}
	return p.ID
}

// Category groups products for display purposes.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// Snapshot is the locally cached copy of the remote catalog.
type Snapshot struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
	Timestamp  time.Time  `json:"timestamp"`
}

// clone returns a Snapshot whose slices share no backing array with the
// receiver, so published state can never be patched in place.
func (s Snapshot) clone() Snapshot {
	out := Snapshot{Timestamp: s.Timestamp}
	if s.Products != nil {
		out.Products = make([]Product, len(s.Products))
		copy(out.Products, s.Products)
	}
	if s.Categories != nil {
		out.Categories = make([]Category, len(s.Categories))
		copy(out.Categories, s.Categories)
	}
	return out
}

// CacheEntry pairs cached data with the moment it was stored, so staleness
// is decided by a pure predicate instead of being baked into fetch logic.
type CacheEntry struct {
	Data      Snapshot  `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// IsStale reports whether the entry is older than threshold at time now.
func (e CacheEntry) IsStale(now time.Time, threshold time.Duration) bool {
	return now.Sub(e.Timestamp) > threshold
}

// ChangeAction describes a delta sync record.
type ChangeAction string

const (
	ChangeCreated ChangeAction = "created"
	ChangeUpdated ChangeAction = "updated"
	ChangeDeleted ChangeAction = "deleted"
)

// Change is one record from the delta sync endpoint.
type Change struct {
	Action ChangeAction `json:"action"`
	ID     string       `json:"id"`
	Data   *Product     `json:"data,omitempty"`
}

// FullCatalog is the full sync endpoint response payload.
type FullCatalog struct {
	Products      []Product  `json:"products"`
	Categories    []Category `json:"categories"`
	SyncTimestamp string     `json:"sync_timestamp"`
}

// Delta is the delta sync endpoint response payload.
type Delta struct {
	Updates       []Change `json:"updates"`
	SyncTimestamp string   `json:"sync_timestamp"`
}

// StockDelta is a signed relative change applied to local cached stock.
type StockDelta struct {
	ProductID   string
	VariationID string
	Delta       int
}
