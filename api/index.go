package api

import (
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
)

// RebuildStatus answers a completed rebuild.
type RebuildStatus struct {
	EntryCount  int       `json:"entry_count"`
	CompletedAt time.Time `json:"completed_at"`
}

type RebuildRun struct {
	ID          string     `json:"id"`
	Trigger     string     `json:"trigger"`
	State       string     `json:"state"`
	EntryCount  int        `json:"entry_count"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IndexStatus describes the published index and recent rebuilds.
type IndexStatus struct {
	State      string       `json:"state"`
	EntryCount int          `json:"entry_count"`
	BuiltAt    *time.Time   `json:"built_at,omitempty"`
	Runs       []RebuildRun `json:"runs"`
}

// Event is one indexing lifecycle notification on the event stream.
type Event struct {
	Type       string    `json:"type"`
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger,omitempty"`
	EntryCount int       `json:"entry_count,omitempty"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

type Error struct {
	Error string `json:"error"`
}

func NewRebuildStatus(s domain.IndexRebuildStatus) RebuildStatus {
	return RebuildStatus{
		EntryCount:  s.EntryCount,
		CompletedAt: s.CompletedAt,
	}
}

func NewRebuildRun(r *domain.RebuildRun) RebuildRun {
	out := RebuildRun{
		ID:         r.ID,
		Trigger:    r.Trigger,
		State:      r.State.String(),
		EntryCount: r.EntryCount,
		Error:      r.Error,
		StartedAt:  r.StartedAt,
	}
	if !r.CompletedAt.IsZero() {
		completed := r.CompletedAt
		out.CompletedAt = &completed
	}
	return out
}

// HTMLContent is a page fragment rendered from the content tree.
type HTMLContent struct {
	Path string `json:"path"`
	HTML string `json:"html"`
}
