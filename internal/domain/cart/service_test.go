package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpos/internal/core/apperror"
	"tillpos/internal/core/types"
	"tillpos/internal/domain/catalog"
)

type fakeRepo struct {
	mu    sync.Mutex
	items []Item
	saves int
}

func (r *fakeRepo) SaveCart(_ context.Context, items []Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	r.saves++
	return nil
}

func (r *fakeRepo) LoadCart(_ context.Context) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items, nil
}

type fakeProducts struct {
	products map[string]catalog.Product
}

func (f *fakeProducts) Lookup(productID, variationID string) (catalog.Product, bool) {
	key := productID
	if variationID != "" {
		key = productID + ":" + variationID
	}
	p, ok := f.products[key]
	return p, ok
}

func newTestService(products ...catalog.Product) (*Service, *fakeRepo) {
	src := &fakeProducts{products: map[string]catalog.Product{}}
	for _, p := range products {
		src.products[p.Key()] = p
	}
	repo := &fakeRepo{}
	return NewService(repo, src), repo
}

func TestAddNewItemLocksPriceAndCeiling(t *testing.T) {
	regular := types.MustMoney("120")
	svc, repo := newTestService(catalog.Product{
		ID:            "1",
		Name:          "Widget",
		Price:         types.MustMoney("100"),
		RegularPrice:  &regular,
		StockQuantity: 3,
	})

	require.NoError(t, svc.Add(context.Background(), "1", ""))

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 3, items[0].StockCeiling)
	require.NotNil(t, items[0].OriginalPrice)
	assert.True(t, regular.Equal(*items[0].OriginalPrice))
	assert.Equal(t, 1, repo.saves, "every mutation writes through")
}

func TestAddSkipsOriginalPriceWhenNotDiscounted(t *testing.T) {
	price := types.MustMoney("100")
	svc, _ := newTestService(catalog.Product{
		ID: "1", Price: price, RegularPrice: &price, StockQuantity: 1,
	})

	require.NoError(t, svc.Add(context.Background(), "1", ""))
	assert.Nil(t, svc.Items()[0].OriginalPrice)
}

func TestAddOutOfStock(t *testing.T) {
	svc, repo := newTestService(catalog.Product{ID: "1", Price: types.MustMoney("10"), StockQuantity: 0})

	err := svc.Add(context.Background(), "1", "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeOutOfStock))
	assert.Zero(t, repo.saves)
}

func TestAddIncrementsUpToCeiling(t *testing.T) {
	svc, _ := newTestService(catalog.Product{ID: "1", Price: types.MustMoney("10"), StockQuantity: 2})

	require.NoError(t, svc.Add(context.Background(), "1", ""))
	require.NoError(t, svc.Add(context.Background(), "1", ""))

	err := svc.Add(context.Background(), "1", "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity, "failed add must not change quantity")
}

func TestUpdateQuantityBoundedByAddTimeCeiling(t *testing.T) {
	svc, _ := newTestService(catalog.Product{ID: "1", Price: types.MustMoney("10"), StockQuantity: 5})
	require.NoError(t, svc.Add(context.Background(), "1", ""))

	require.NoError(t, svc.UpdateQuantity(context.Background(), "1", 5))

	err := svc.UpdateQuantity(context.Background(), "1", 6)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, 5, svc.Items()[0].Quantity)
}

func TestUpdateQuantityRejectsZero(t *testing.T) {
	svc, _ := newTestService(catalog.Product{ID: "1", Price: types.MustMoney("10"), StockQuantity: 5})
	require.NoError(t, svc.Add(context.Background(), "1", ""))

	err := svc.UpdateQuantity(context.Background(), "1", 0)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRemoveAndClear(t *testing.T) {
	svc, repo := newTestService(
		catalog.Product{ID: "1", Price: types.MustMoney("10"), StockQuantity: 5},
		catalog.Product{ID: "2", Price: types.MustMoney("20"), StockQuantity: 5},
	)
	require.NoError(t, svc.Add(context.Background(), "1", ""))
	require.NoError(t, svc.Add(context.Background(), "2", ""))

	require.NoError(t, svc.Remove(context.Background(), "1"))
	require.Len(t, svc.Items(), 1)

	require.NoError(t, svc.Clear(context.Background()))
	assert.Empty(t, svc.Items())
	assert.Empty(t, repo.items)
}

func TestRemoveUnknownItem(t *testing.T) {
	svc, _ := newTestService()
	err := svc.Remove(context.Background(), "nope")
	assert.True(t, apperror.IsNotFound(err))
}

func TestVariationAddressedByComposite(t *testing.T) {
	svc, _ := newTestService(catalog.Product{
		ID: "10-1", ParentID: "10", VariationID: "v1",
		Price: types.MustMoney("15"), StockQuantity: 2,
	})

	require.NoError(t, svc.Add(context.Background(), "10", "v1"))

	items := svc.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "10:v1", items[0].Key())
}

func TestLinesMirrorItems(t *testing.T) {
	purchase := types.MustMoney("6")
	svc, _ := newTestService(catalog.Product{
		ID: "1", Name: "Widget", Price: types.MustMoney("10"),
		PurchasePrice: &purchase, StockQuantity: 5,
	})
	require.NoError(t, svc.Add(context.Background(), "1", ""))
	require.NoError(t, svc.UpdateQuantity(context.Background(), "1", 3))

	lines := svc.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	require.NotNil(t, lines[0].PurchasePrice)
	assert.True(t, purchase.Equal(*lines[0].PurchasePrice))
}

func TestLoadRestoresPersistedCart(t *testing.T) {
	repo := &fakeRepo{items: []Item{{ProductID: "1", Quantity: 2, StockCeiling: 4, Price: types.MustMoney("10")}}}
	svc := NewService(repo, &fakeProducts{})

	require.NoError(t, svc.Load(context.Background()))
	require.Len(t, svc.Items(), 1)
	assert.Equal(t, 2, svc.Items()[0].Quantity)
}
