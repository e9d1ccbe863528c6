package domain

import (
	"context"
	"time"
)

// IndexState is the coordinator's position in the rebuild state machine.
type IndexState int32

const (
	StateIdle IndexState = iota
	StateSyncing
	StateBuilding
	StateSwapping
	StateFailed
)

func (s IndexState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	case StateBuilding:
		return "building"
	case StateSwapping:
		return "swapping"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IndexRebuildStatus is returned synchronously to the rebuild caller.
type IndexRebuildStatus struct {
	EntryCount  int
	CompletedAt time.Time
}

// RebuildRun records one rebuild attempt
type RebuildRun struct {
	ID          string
	Trigger     string
	State       IndexState
	EntryCount  int
	Error       string
	StartedAt   time.Time
	CompletedAt time.Time
}

type RebuildRepository interface {
	// SaveRun inserts or updates a run by ID
	SaveRun(ctx context.Context, run *RebuildRun) error

	// GetRun retrieves a single run
	GetRun(ctx context.Context, id string) (*RebuildRun, error)

	// ListRuns returns the most recent runs, newest first
	ListRuns(ctx context.Context, limit int) ([]*RebuildRun, error)
}

// ParseIndexState is the inverse of IndexState.String.
func ParseIndexState(s string) IndexState {
	switch s {
	case "syncing":
		return StateSyncing
	case "building":
		return StateBuilding
	case "swapping":
		return StateSwapping
	case "failed":
		return StateFailed
	default:
		return StateIdle
	}
}
