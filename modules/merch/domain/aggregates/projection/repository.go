package projection

import "context"

type SnapshotRepository interface {
	// AppendBatch inserts snapshot rows. Snapshots are never updated or
	// deleted.
	AppendBatch(ctx context.Context, snapshots []Snapshot) error
	// ListLatest returns, for each (sku, year, month), the snapshot with the
	// newest import date.
	ListLatest(ctx context.Context) ([]Snapshot, error)
}

type ActiveRepository interface {
	ListAll(ctx context.Context) ([]ActiveProjection, error)
	// ReplaceAll swaps the whole working set, as the rebuild step requires.
	ReplaceAll(ctx context.Context, projections []ActiveProjection) error
	// SaveMatches persists match fields for the given projections, keyed by
	// MatchKey.
	SaveMatches(ctx context.Context, projections []ActiveProjection) error
}
