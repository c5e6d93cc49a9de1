package projection

// MatchedEvent is published for every projection whose match status changed
// during a matching pass.
type MatchedEvent struct {
	Key      Key
	Status   MatchStatus
	PONumber string
}

// RebuiltEvent is published after the active projection set is rebuilt from
// the latest snapshots.
type RebuiltEvent struct {
	Count int
}
