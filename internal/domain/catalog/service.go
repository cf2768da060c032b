package catalog

import (
	"context"
	"sync"
	"time"

	"tillpos/internal/core/apperror"
	"tillpos/pkg/logger"
)

// Service is the inventory sync engine. It owns the in-memory product set,
// keeps the durable snapshot and cursor in step, and enforces the
// one-sync-in-flight rule: a second caller is rejected, never queued.
type Service struct {
	repo       Repository
	remote     RemoteAPI
	cache      SnapshotCache
	staleAfter time.Duration
	now        func() time.Time

	// syncMu is the in-flight guard. TryLock only; holding it for the
	// duration of a sync makes "reject, don't queue" the only outcome
	// for concurrent callers.
	syncMu sync.Mutex

	stateMu sync.RWMutex
	snap    Snapshot
	cursor  string
}

// NewService creates the sync engine. staleAfter controls when reads
// trigger a background revalidation.
func NewService(repo Repository, remote RemoteAPI, cache SnapshotCache, staleAfter time.Duration) *Service {
	return &Service{
		repo:       repo,
		remote:     remote,
		cache:      cache,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Load primes the in-memory state, preferring the fast cache over the
// durable store on warm restarts. Called once at startup.
func (s *Service) Load(ctx context.Context) error {
	cursor, err := s.repo.LoadCursor(ctx)
	if err != nil {
		return err
	}

	entry, hit, err := s.cache.Get(ctx)
	if err != nil {
		logger.Warn(ctx, "snapshot cache read failed", "error", err)
	}
	if hit {
		s.stateMu.Lock()
		s.cursor = cursor
		s.snap = entry.Data.clone()
		s.stateMu.Unlock()
		return nil
	}

	snap, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	s.stateMu.Lock()
	s.cursor = cursor
	if snap != nil {
		s.snap = *snap
	}
	s.stateMu.Unlock()

	if snap != nil {
		if err := s.cache.Set(ctx, CacheEntry{Data: snap.clone(), Timestamp: snap.Timestamp}); err != nil {
			logger.Warn(ctx, "failed to warm snapshot cache", "error", err)
		}
	}

	return nil
}

// Snapshot returns the cached catalog immediately (stale-while-revalidate):
// when the cache is older than the freshness threshold, a non-blocking
// background refresh is started and the caller still gets the stale copy.
func (s *Service) Snapshot(ctx context.Context) Snapshot {
	s.stateMu.RLock()
	snap := s.snap.clone()
	s.stateMu.RUnlock()

	entry := CacheEntry{Data: snap, Timestamp: snap.Timestamp}
	if entry.IsStale(s.now(), s.staleAfter) {
		go s.revalidate()
	}

	return snap
}

// Lookup finds a product by id, or by parent+variation for variations.
func (s *Service) Lookup(productID, variationID string) (Product, bool) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	for _, p := range s.snap.Products {
		if variationID != "" {
			if p.ParentID == productID && p.VariationID == variationID {
				return p, true
			}
			continue
		}
		if p.ID == productID {
			return p, true
		}
	}
	return Product{}, false
}

// StockQuantity returns the cached stock level for a product.
func (s *Service) StockQuantity(productID, variationID string) (int, bool) {
	p, ok := s.Lookup(productID, variationID)
	if !ok {
		return 0, false
	}
	return p.StockQuantity, true
}

// Sync runs a full or delta synchronization. A concurrent call while one is
// in flight gets SyncInProgress. Delta is chosen automatically when a cursor
// exists unless full is forced.
func (s *Service) Sync(ctx context.Context, full bool) error {
	if !s.syncMu.TryLock() {
		return apperror.NewSyncInProgress()
	}
	defer s.syncMu.Unlock()

	s.stateMu.RLock()
	cursor := s.cursor
	s.stateMu.RUnlock()

	if full || cursor == "" {
		return s.fullSync(ctx)
	}
	return s.deltaSync(ctx, cursor)
}

func (s *Service) fullSync(ctx context.Context) error {
	catalog, err := s.remote.FetchCatalog(ctx)
	if err != nil {
		return apperror.NewSyncFailed(err)
	}

	snap := Snapshot{
		Products:   catalog.Products,
		Categories: catalog.Categories,
		Timestamp:  s.now(),
	}

	if err := s.commit(ctx, snap, catalog.SyncTimestamp); err != nil {
		return err
	}

	logger.Info(ctx, "full sync completed",
		"products", len(snap.Products),
		"categories", len(snap.Categories),
		"cursor", catalog.SyncTimestamp,
	)
	return nil
}

func (s *Service) deltaSync(ctx context.Context, cursor string) error {
	delta, err := s.remote.FetchChanges(ctx, cursor)
	if err != nil {
		return apperror.NewSyncFailed(err)
	}

	// Patch a private copy: the live set must stay untouched until the
	// commit persists, and readers never see a half-applied delta.
	s.stateMu.RLock()
	snap := s.snap.clone()
	s.stateMu.RUnlock()

	snap.Products = applyChanges(snap.Products, delta.Updates)
	snap.Timestamp = s.now()

	// Zero changes still advances the cursor: the server confirmed we are current.
	if err := s.commit(ctx, snap, delta.SyncTimestamp); err != nil {
		return err
	}

	logger.Info(ctx, "delta sync completed",
		"changes", len(delta.Updates),
		"cursor", delta.SyncTimestamp,
	)
	return nil
}

// commit persists the snapshot and cursor, then publishes the new state to
// memory and the fast cache. Persist failures leave cursor and cache as-is.
func (s *Service) commit(ctx context.Context, snap Snapshot, cursor string) error {
	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return apperror.NewSyncFailed(err)
	}
	if err := s.repo.SaveCursor(ctx, cursor); err != nil {
		return apperror.NewSyncFailed(err)
	}

	s.stateMu.Lock()
	s.snap = snap
	s.cursor = cursor
	s.stateMu.Unlock()

	if err := s.cache.Set(ctx, CacheEntry{Data: snap.clone(), Timestamp: snap.Timestamp}); err != nil {
		logger.Warn(ctx, "failed to update snapshot cache", "error", err)
	}
	return nil
}

// revalidate runs a background sync detached from the caller's request
// context. A sync already in flight makes this a no-op.
func (s *Service) revalidate() {
	ctx := context.Background()
	if err := s.Sync(ctx, false); err != nil {
		if apperror.HasCode(err, apperror.CodeSyncInProgress) {
			return
		}
		logger.Warn(ctx, "background revalidation failed", "error", err)
	}
}

// AdjustStock applies signed relative deltas to the cached stock levels,
// clamping at zero, and writes the patched snapshot through to the store.
// This is the optimistic half of a stock push; the next sync reconciles drift.
func (s *Service) AdjustStock(ctx context.Context, deltas []StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	s.stateMu.Lock()
	for _, d := range deltas {
		for i := range s.snap.Products {
			p := &s.snap.Products[i]
			if d.VariationID != "" {
				if p.ParentID != d.ProductID || p.VariationID != d.VariationID {
					continue
				}
			} else if p.ID != d.ProductID {
				continue
			}

			p.StockQuantity += d.Delta
			if p.StockQuantity < 0 {
				p.StockQuantity = 0
			}
			break
		}
	}
	snap := s.snap.clone()
	s.stateMu.Unlock()

	if err := s.repo.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, CacheEntry{Data: snap, Timestamp: snap.Timestamp}); err != nil {
		logger.Warn(ctx, "failed to update snapshot cache", "error", err)
	}
	return nil
}

// applyChanges patches a product list in place: insert on created, merge by
// id on updated, remove on deleted. Unknown ids on update fall back to insert
// so a missed created record cannot wedge the cache.
func applyChanges(products []Product, changes []Change) []Product {
	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}

	for _, c := range changes {
		switch c.Action {
		case ChangeCreated, ChangeUpdated:
			if c.Data == nil {
				continue
			}
			if i, ok := index[c.ID]; ok {
				products[i] = *c.Data
				continue
			}
			index[c.ID] = len(products)
			products = append(products, *c.Data)
		case ChangeDeleted:
			i, ok := index[c.ID]
			if !ok {
				continue
			}
			products = append(products[:i], products[i+1:]...)
			index = make(map[string]int, len(products))
			for j, p := range products {
				index[p.ID] = j
			}
		}
	}

	return products
}
