package cache

import (
	"context"
	"sync"

	"tillpos/internal/domain/catalog"
)

// Memory implements catalog.SnapshotCache in process, for development and
// tests. No TTL; the staleness predicate on the entry decides freshness.
type Memory struct {
	mu    sync.RWMutex
	entry *catalog.CacheEntry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(_ context.Context) (*catalog.CacheEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.entry == nil {
		return nil, false, nil
	}
	entry := *m.entry
	return &entry, true, nil
}

func (m *Memory) Set(_ context.Context, entry catalog.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = &entry
	return nil
}
