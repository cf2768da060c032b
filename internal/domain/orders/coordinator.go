package orders

import (
	"context"
	"sync"

	"tillpos/internal/core/apperror"
	"tillpos/pkg/logger"
)

// Coordinator serializes order fetches. A call arriving while one is
// outstanding is rejected with FetchInProgress, never queued behind it.
type Coordinator struct {
	remote RemoteAPI

	fetchMu sync.Mutex

	stateMu sync.RWMutex
	orders  []Order
	total   int
	hasMore bool
}

func NewCoordinator(remote RemoteAPI) *Coordinator {
	return &Coordinator{remote: remote}
}

// Orders returns a copy of the current merged order list.
func (c *Coordinator) Orders() []Order {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	out := make([]Order, len(c.orders))
	copy(out, c.orders)
	return out
}

// Fetch pulls one page and merges it into local state. Replace mode keeps
// the existing list when the fetched set matches it by identity and count,
// so polling with no remote changes is a no-op downstream.
func (c *Coordinator) Fetch(ctx context.Context, filters Filters, mode MergeMode) (Result, error) {
	if !c.fetchMu.TryLock() {
		return Result{}, apperror.NewFetchInProgress()
	}
	defer c.fetchMu.Unlock()

	page, err := c.remote.FetchOrders(ctx, filters)
	if err != nil {
		return Result{}, apperror.NewRemoteUnavailable("orders", err)
	}

	c.stateMu.Lock()
	defer c.stateMu.Unlock()

	changed := false
	switch mode {
	case MergeAppend:
		added := c.appendDeduped(page.Orders)
		changed = added > 0
	default:
		if !sameSet(c.orders, page.Orders) {
			c.orders = page.Orders
			changed = true
		}
	}

	c.total = page.Total
	c.hasMore = page.HasMore

	logger.Debug(ctx, "order fetch merged",
		"mode", string(mode),
		"fetched", len(page.Orders),
		"changed", changed,
	)

	out := make([]Order, len(c.orders))
	copy(out, c.orders)
	return Result{Orders: out, Total: c.total, HasMore: c.hasMore, Changed: changed}, nil
}

// appendDeduped concatenates orders not already present, by id. Caller
// holds stateMu. Returns the number actually added.
func (c *Coordinator) appendDeduped(fetched []Order) int {
	seen := make(map[string]struct{}, len(c.orders))
	for _, o := range c.orders {
		seen[o.ID] = struct{}{}
	}

	added := 0
	for _, o := range fetched {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		c.orders = append(c.orders, o)
		added++
	}
	return added
}

// sameSet reports whether two order lists carry the same id multiset.
// Field-level changes inside an order do not count as a set change; a
// full replace handles those on the next differing poll.
func sameSet(current, fetched []Order) bool {
	if len(current) != len(fetched) {
		return false
	}
	counts := make(map[string]int, len(current))
	for _, o := range current {
		counts[o.ID]++
	}
	for _, o := range fetched {
		counts[o.ID]--
		if counts[o.ID] < 0 {
			return false
		}
	}
	return true
}
