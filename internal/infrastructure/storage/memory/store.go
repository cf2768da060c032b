// Package memory is an in-process store with the same surface as the
// postgres one. Used for development and tests; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"tillpos/internal/domain/cart"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/invoice"
)

// Store keeps all four logical keys behind one mutex: the invoice log, the
// current cart, the catalog snapshot and the sync cursor.
type Store struct {
	mu       sync.RWMutex
	invoices map[string]invoice.Invoice
	cartSet  []cart.Item
	snapshot *catalog.Snapshot
	cursor   string
}

func NewStore() *Store {
	return &Store{invoices: make(map[string]invoice.Invoice)}
}

// --- catalog.Repository ---

func (s *Store) SaveSnapshot(_ context.Context, snap catalog.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := snap
	cp.Products = append([]catalog.Product(nil), snap.Products...)
	cp.Categories = append([]catalog.Category(nil), snap.Categories...)
	s.snapshot = &cp
	return nil
}

func (s *Store) LoadSnapshot(_ context.Context) (*catalog.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, nil
	}
	cp := *s.snapshot
	cp.Products = append([]catalog.Product(nil), s.snapshot.Products...)
	cp.Categories = append([]catalog.Category(nil), s.snapshot.Categories...)
	return &cp, nil
}

func (s *Store) SaveCursor(_ context.Context, lastSync string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = lastSync
	return nil
}

func (s *Store) LoadCursor(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor, nil
}

// --- cart.Repository ---

func (s *Store) SaveCart(_ context.Context, items []cart.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartSet = append([]cart.Item(nil), items...)
	return nil
}

func (s *Store) LoadCart(_ context.Context) ([]cart.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]cart.Item(nil), s.cartSet...), nil
}

// --- invoice.Repository ---

func (s *Store) AppendInvoice(_ context.Context, inv invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
	return nil
}

func (s *Store) SaveInvoice(_ context.Context, inv invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
	return nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (s *Store) ListInvoices(_ context.Context) ([]invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]invoice.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) ClearInvoices(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = make(map[string]invoice.Invoice)
	return nil
}
