package order

// ImportedEvent is published after an import pass finishes upserting
// purchase orders, regardless of per-row failures.
type ImportedEvent struct {
	Created int
	Updated int
	Skipped int
}

// ClearedEvent is published by the administrative clear-all action.
type ClearedEvent struct {
	Deleted int64
}

// ClassifiedEvent is published after a classification pass persists fresh
// OTD and at-risk outcomes.
type ClassifiedEvent struct {
	Orders int
}
