package domain

import "time"

// IndexingStarted is emitted when a rebuild acquires the rebuild lock.
type IndexingStarted struct {
	RunID   string
	Trigger string
	At      time.Time
}

// IndexingFinished is emitted after the new snapshot has been published.
type IndexingFinished struct {
	RunID    string
	Snapshot *Snapshot
	At       time.Time
}

// IndexingFailed is emitted when a rebuild aborts. The previous snapshot stays current.
type IndexingFailed struct {
	RunID string
	Err   error
	At    time.Time
}
