package catalog

import "context"

// Repository is the durable local-store slice the sync engine needs:
// the catalog snapshot and the sync cursor.
type Repository interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
	// LoadSnapshot returns nil when no snapshot has been persisted yet.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	SaveCursor(ctx context.Context, lastSync string) error
	// LoadCursor returns "" when no sync has completed yet.
	LoadCursor(ctx context.Context) (string, error)
}

// RemoteAPI is the remote catalog sync contract.
type RemoteAPI interface {
	FetchCatalog(ctx context.Context) (*FullCatalog, error)
	FetchChanges(ctx context.Context, since string) (*Delta, error)
}

// SnapshotCache is the fast snapshot cache in front of the durable store.
type SnapshotCache interface {
	Get(ctx context.Context) (*CacheEntry, bool, error)
	Set(ctx context.Context, entry CacheEntry) error
}
