package capacity

import "context"

// LockResult reports how many rows a lock or unlock pass touched.
type LockResult struct {
	DataRows    int64
	SummaryRows int64
}

// Summary is the per-vendor-year roll-up of the monthly capacity rows,
// refreshed whenever a capacity feed lands. Locked summaries freeze with
// their year.
type Summary struct {
	VendorCode         string
	Year               int
	TotalShipmentCents int64
	TotalReservedCents int64
	IsLocked           bool
}

type Repository interface {
	ListByYear(ctx context.Context, year int) ([]VendorCapacityData, error)
	UpsertBatch(ctx context.Context, rows []VendorCapacityData) error
	LockYear(ctx context.Context, year int) (LockResult, error)
	UnlockYear(ctx context.Context, year int) (LockResult, error)
	// DeleteUnlocked deletes rows for the given years where is_locked is
	// false, summaries included. The lock check and the delete must run in
	// one statement so a concurrent lock cannot race the clear.
	DeleteUnlocked(ctx context.Context, years []int) (int64, error)
	CountByYear(ctx context.Context, year int) (int64, error)
	CountLocked(ctx context.Context, years []int) (int64, error)
	// RefreshSummary re-derives the vendor-year roll-ups for the given
	// years from the monthly rows. Locked summaries are left untouched.
	RefreshSummary(ctx context.Context, years []int) (int64, error)
	ListSummaries(ctx context.Context, year int) ([]Summary, error)
}
