package capacity

// YearLockedEvent is published when a capacity year is locked or unlocked.
type YearLockedEvent struct {
	Year   int
	Locked bool
	Rows   LockResult
}
