package cart

import (
	"context"
	"sync"

	"tillpos/internal/core/apperror"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/checkout"
)

// ProductSource resolves products against the live catalog cache.
// Satisfied by the catalog service.
type ProductSource interface {
	Lookup(productID, variationID string) (catalog.Product, bool)
}

// Service is the cart manager. Stock checks run against the ceiling captured
// when the item was added, not a live re-fetch; this favors responsiveness
// over strict freshness and the next sync reconciles drift.
type Service struct {
	repo     Repository
	products ProductSource

	mu    sync.Mutex
	items []Item
}

func NewService(repo Repository, products ProductSource) *Service {
	return &Service{repo: repo, products: products}
}

// Load restores the persisted cart. Called once at startup.
func (s *Service) Load(ctx context.Context) error {
	items, err := s.repo.LoadCart(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the current cart lines.
func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Lines converts the cart into billable checkout lines.
func (s *Service) Lines() []checkout.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]checkout.LineItem, 0, len(s.items))
	for _, it := range s.items {
		lines = append(lines, checkout.LineItem{
			ProductID:     it.ProductID,
			VariationID:   it.VariationID,
			Name:          it.Name,
			Price:         it.Price,
			OriginalPrice: it.OriginalPrice,
			PurchasePrice: it.PurchasePrice,
			Quantity:      it.Quantity,
		})
	}
	return lines
}

// Add puts one unit of a product into the cart. An item already present has
// its quantity incremented against the ceiling recorded at add-time. A fresh
// item locks the current selling price and remembers the regular price only
// when it is strictly higher (an active discount worth displaying).
func (s *Service) Add(ctx context.Context, productID, variationID string) error {
	p, ok := s.products.Lookup(productID, variationID)
	if !ok {
		return apperror.NewNotFound("product", productID)
	}
	if p.StockQuantity <= 0 {
		return apperror.NewOutOfStock(productID)
	}

	s.mu.Lock()

	for i := range s.items {
		it := &s.items[i]
		if it.ProductID != productID || it.VariationID != variationID {
			continue
		}
		if it.Quantity+1 > it.StockCeiling {
			requested := it.Quantity + 1
			available := it.StockCeiling
			s.mu.Unlock()
			return apperror.NewInsufficientStock(productID, requested, available)
		}
		it.Quantity++
		return s.persist(ctx)
	}

	item := Item{
		ProductID:    productID,
		VariationID:  variationID,
		Name:         p.Name,
		Price:        p.Price,
		Quantity:     1,
		StockCeiling: p.StockQuantity,
	}
	if p.PurchasePrice != nil {
		pp := *p.PurchasePrice
		item.PurchasePrice = &pp
	}
	if p.RegularPrice != nil && p.RegularPrice.GreaterThan(p.Price) {
		rp := *p.RegularPrice
		item.OriginalPrice = &rp
	}
	s.items = append(s.items, item)
	return s.persist(ctx)
}

// UpdateQuantity sets an item's quantity, bounded by the add-time ceiling.
// Quantities below one are rejected; removal is the only path to zero.
func (s *Service) UpdateQuantity(ctx context.Context, itemKey string, quantity int) error {
	if quantity < 1 {
		return apperror.NewValidation("quantity must be at least 1")
	}

	s.mu.Lock()

	for i := range s.items {
		it := &s.items[i]
		if it.Key() != itemKey {
			continue
		}
		if quantity > it.StockCeiling {
			available := it.StockCeiling
			s.mu.Unlock()
			return apperror.NewInsufficientStock(it.ProductID, quantity, available)
		}
		it.Quantity = quantity
		return s.persist(ctx)
	}

	s.mu.Unlock()
	return apperror.NewNotFound("cart item", itemKey)
}

// Remove drops an item from the cart.
func (s *Service) Remove(ctx context.Context, itemKey string) error {
	s.mu.Lock()

	for i := range s.items {
		if s.items[i].Key() != itemKey {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return s.persist(ctx)
	}

	s.mu.Unlock()
	return apperror.NewNotFound("cart item", itemKey)
}

// Clear empties the cart. Called directly and after a successful checkout.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	return s.persist(ctx)
}

// persist writes the cart through to the store. Caller holds s.mu; persist
// releases it.
func (s *Service) persist(ctx context.Context) error {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	s.mu.Unlock()

	return s.repo.SaveCart(ctx, items)
}
