package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpos/internal/core/apperror"
	"tillpos/internal/core/types"
)

// --- fakes ---

type fakeRepo struct {
	mu     sync.Mutex
	snap   *Snapshot
	cursor string

	saveSnapshotErr error
}

func (r *fakeRepo) SaveSnapshot(_ context.Context, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveSnapshotErr != nil {
		return r.saveSnapshotErr
	}
	r.snap = &snap
	return nil
}

func (r *fakeRepo) LoadSnapshot(_ context.Context) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap, nil
}

func (r *fakeRepo) SaveCursor(_ context.Context, lastSync string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = lastSync
	return nil
}

func (r *fakeRepo) LoadCursor(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor, nil
}

type fakeCache struct {
	mu    sync.Mutex
	entry *CacheEntry
}

func (c *fakeCache) Get(_ context.Context) (*CacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return nil, false, nil
	}
	return c.entry, true, nil
}

func (c *fakeCache) Set(_ context.Context, entry CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = &entry
	return nil
}

type fakeRemote struct {
	mu          sync.Mutex
	catalogHits int
	deltaHits   int

	catalog *FullCatalog
	delta   *Delta

	// when set, FetchCatalog blocks until released (concurrency tests)
	entered  chan struct{}
	released chan struct{}
}

func (r *fakeRemote) FetchCatalog(_ context.Context) (*FullCatalog, error) {
	r.mu.Lock()
	r.catalogHits++
	r.mu.Unlock()

	if r.entered != nil {
		r.entered <- struct{}{}
		<-r.released
	}
	return r.catalog, nil
}

func (r *fakeRemote) FetchChanges(_ context.Context, _ string) (*Delta, error) {
	r.mu.Lock()
	r.deltaHits++
	r.mu.Unlock()
	return r.delta, nil
}

func product(id string, stock int) Product {
	return Product{ID: id, Name: "p-" + id, Price: types.MustMoney("10"), StockQuantity: stock}
}

func newTestService(remote *fakeRemote) (*Service, *fakeRepo) {
	repo := &fakeRepo{}
	return NewService(repo, remote, &fakeCache{}, 3*time.Minute), repo
}

// --- tests ---

func TestFullSyncReplacesSnapshotAndCursor(t *testing.T) {
	remote := &fakeRemote{catalog: &FullCatalog{
		Products:      []Product{product("1", 5), product("2", 0)},
		Categories:    []Category{{ID: "c1", Name: "Drinks"}},
		SyncTimestamp: "2026-08-30T10:00:00Z",
	}}
	svc, repo := newTestService(remote)

	require.NoError(t, svc.Sync(context.Background(), true))

	snap := svc.Snapshot(context.Background())
	assert.Len(t, snap.Products, 2)
	assert.Len(t, snap.Categories, 1)

	cursor, err := repo.LoadCursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30T10:00:00Z", cursor)
}

func TestFirstSyncIsFullEvenWhenDeltaRequested(t *testing.T) {
	remote := &fakeRemote{catalog: &FullCatalog{SyncTimestamp: "t1"}}
	svc, _ := newTestService(remote)

	require.NoError(t, svc.Sync(context.Background(), false))
	assert.Equal(t, 1, remote.catalogHits)
	assert.Equal(t, 0, remote.deltaHits)
}

func TestDeltaSyncAppliesChanges(t *testing.T) {
	remote := &fakeRemote{catalog: &FullCatalog{
		Products:      []Product{product("1", 5), product("2", 3)},
		SyncTimestamp: "t1",
	}}
	svc, _ := newTestService(remote)
	require.NoError(t, svc.Sync(context.Background(), true))

	updated := product("1", 9)
	created := product("3", 4)
	remote.delta = &Delta{
		Updates: []Change{
			{Action: ChangeUpdated, ID: "1", Data: &updated},
			{Action: ChangeCreated, ID: "3", Data: &created},
			{Action: ChangeDeleted, ID: "2"},
		},
		SyncTimestamp: "t2",
	}
	require.NoError(t, svc.Sync(context.Background(), false))

	snap := svc.Snapshot(context.Background())
	require.Len(t, snap.Products, 2)

	got, ok := svc.Lookup("1", "")
	require.True(t, ok)
	assert.Equal(t, 9, got.StockQuantity)

	_, ok = svc.Lookup("2", "")
	assert.False(t, ok)

	_, ok = svc.Lookup("3", "")
	assert.True(t, ok)
}

func TestDeltaSyncWithNoChangesAdvancesCursor(t *testing.T) {
	remote := &fakeRemote{catalog: &FullCatalog{
		Products:      []Product{product("1", 5)},
		SyncTimestamp: "t1",
	}}
	svc, repo := newTestService(remote)
	require.NoError(t, svc.Sync(context.Background(), true))

	remote.delta = &Delta{Updates: nil, SyncTimestamp: "t2"}
	require.NoError(t, svc.Sync(context.Background(), false))

	cursor, err := repo.LoadCursor(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t2", cursor)

	before := svc.Snapshot(context.Background()).Products
	require.NoError(t, svc.Sync(context.Background(), false))
	after := svc.Snapshot(context.Background()).Products
	assert.Equal(t, before, after, "repeated empty delta must leave product cache unchanged")
}

func TestFailedDeltaCommitLeavesCacheUntouched(t *testing.T) {
	remote := &fakeRemote{catalog: &FullCatalog{
		Products:      []Product{product("1", 5)},
		SyncTimestamp: "t1",
	}}
	svc, repo := newTestService(remote)
	require.NoError(t, svc.Sync(context.Background(), true))

	updated := product("1", 99)
	remote.delta = &Delta{
		Updates:       []Change{{Action: ChangeUpdated, ID: "1", Data: &updated}},
		SyncTimestamp: "t2",
	}
	repo.saveSnapshotErr = errors.New("disk full")

	err := svc.Sync(context.Background(), false)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeSyncFailed))

	qty, ok := svc.StockQuantity("1", "")
	require.True(t, ok)
	assert.Equal(t, 5, qty, "a failed persist must not leak patched products into the live set")

	cursor, cerr := repo.LoadCursor(context.Background())
	require.NoError(t, cerr)
	assert.Equal(t, "t1", cursor)
}

func TestSnapshotReturnsIndependentCopy(t *testing.T) {
	remote := &fakeRemote{catalog: &FullCatalog{
		Products:      []Product{product("1", 5)},
		SyncTimestamp: "t1",
	}}
	svc, _ := newTestService(remote)
	require.NoError(t, svc.Sync(context.Background(), true))

	snap := svc.Snapshot(context.Background())
	snap.Products[0].StockQuantity = 123

	qty, _ := svc.StockQuantity("1", "")
	assert.Equal(t, 5, qty, "callers must not be able to patch the live set through a snapshot")
}

func TestLoadPrefersWarmCache(t *testing.T) {
	repo := &fakeRepo{
		snap:   &Snapshot{Products: []Product{product("1", 5)}},
		cursor: "t1",
	}
	cache := &fakeCache{entry: &CacheEntry{
		Data:      Snapshot{Products: []Product{product("1", 9)}},
		Timestamp: time.Now(),
	}}
	svc := NewService(repo, &fakeRemote{}, cache, 3*time.Minute)

	require.NoError(t, svc.Load(context.Background()))

	qty, ok := svc.StockQuantity("1", "")
	require.True(t, ok)
	assert.Equal(t, 9, qty, "cache hit wins over the durable snapshot")
}

func TestLoadFallsBackToStoreAndWarmsCache(t *testing.T) {
	repo := &fakeRepo{
		snap:   &Snapshot{Products: []Product{product("1", 5)}},
		cursor: "t1",
	}
	cache := &fakeCache{}
	svc := NewService(repo, &fakeRemote{}, cache, 3*time.Minute)

	require.NoError(t, svc.Load(context.Background()))

	qty, _ := svc.StockQuantity("1", "")
	assert.Equal(t, 5, qty)
	require.NotNil(t, cache.entry, "a store-backed load must warm the cache")
	assert.Len(t, cache.entry.Data.Products, 1)
}

func TestConcurrentSyncRejectedNotQueued(t *testing.T) {
	remote := &fakeRemote{
		catalog:  &FullCatalog{SyncTimestamp: "t1"},
		entered:  make(chan struct{}),
		released: make(chan struct{}),
	}
	svc, _ := newTestService(remote)

	done := make(chan error, 1)
	go func() {
		done <- svc.Sync(context.Background(), true)
	}()

	<-remote.entered // first sync is inside the network call

	err := svc.Sync(context.Background(), true)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeSyncInProgress))

	close(remote.released)
	require.NoError(t, <-done)

	assert.Equal(t, 1, remote.catalogHits, "exactly one network sync request")
}

func TestCacheEntryIsStale(t *testing.T) {
	now := time.Now()
	entry := CacheEntry{Timestamp: now.Add(-2 * time.Minute)}

	assert.False(t, entry.IsStale(now, 3*time.Minute))
	assert.True(t, entry.IsStale(now, time.Minute))
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	remote := &fakeRemote{catalog: &FullCatalog{
		Products:      []Product{product("1", 2)},
		SyncTimestamp: "t1",
	}}
	svc, _ := newTestService(remote)
	require.NoError(t, svc.Sync(context.Background(), true))

	require.NoError(t, svc.AdjustStock(context.Background(), []StockDelta{{ProductID: "1", Delta: -5}}))

	qty, ok := svc.StockQuantity("1", "")
	require.True(t, ok)
	assert.Equal(t, 0, qty)
}

func TestAdjustStockRoundTrip(t *testing.T) {
	remote := &fakeRemote{catalog: &FullCatalog{
		Products:      []Product{product("1", 7)},
		SyncTimestamp: "t1",
	}}
	svc, _ := newTestService(remote)
	require.NoError(t, svc.Sync(context.Background(), true))

	require.NoError(t, svc.AdjustStock(context.Background(), []StockDelta{{ProductID: "1", Delta: -3}}))
	require.NoError(t, svc.AdjustStock(context.Background(), []StockDelta{{ProductID: "1", Delta: 3}}))

	qty, _ := svc.StockQuantity("1", "")
	assert.Equal(t, 7, qty)
}

func TestLookupVariationByComposite(t *testing.T) {
	variation := Product{ID: "10-1", ParentID: "10", VariationID: "v1", StockQuantity: 4, Price: types.MustMoney("5")}
	remote := &fakeRemote{catalog: &FullCatalog{
		Products:      []Product{product("10", 0), variation},
		SyncTimestamp: "t1",
	}}
	svc, _ := newTestService(remote)
	require.NoError(t, svc.Sync(context.Background(), true))

	got, ok := svc.Lookup("10", "v1")
	require.True(t, ok)
	assert.Equal(t, 4, got.StockQuantity)
}
