package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfryer1193/blogapi/blog/domain"
)

// DefaultMaxSearchResults caps how many candidates the engine returns per query.
const DefaultMaxSearchResults = 1000

// SnapshotSource yields the currently published snapshot.
type SnapshotSource interface {
	Snapshot() *domain.Snapshot
}

// SearchFacade answers keyword queries. Matches are resolved against whatever
// snapshot is current at resolution time; paths that are no longer present are skipped.
type SearchFacade struct {
	engine     domain.SearchEngine
	snapshots  SnapshotSource
	maxResults int
}

func NewSearchFacade(engine domain.SearchEngine, snapshots SnapshotSource, maxResults int) *SearchFacade {
	if maxResults <= 0 {
		maxResults = DefaultMaxSearchResults
	}
	return &SearchFacade{
		engine:     engine,
		snapshots:  snapshots,
		maxResults: maxResults,
	}
}

func (f *SearchFacade) Search(ctx context.Context, query string, offset, pageSize int) (domain.SearchResultPage, error) {
	if strings.TrimSpace(query) == "" {
		return window(nil, offset, pageSize), nil
	}

	paths, err := f.engine.Query(ctx, query, f.maxResults)
	if err != nil {
		return domain.SearchResultPage{}, fmt.Errorf("failed to query search index: %w", err)
	}

	snapshot := f.snapshots.Snapshot()
	seen := make(map[string]bool, len(paths))
	resolved := make([]*domain.Post, 0, len(paths))
	for _, path := range paths {
		if seen[path] {
			continue
		}
		seen[path] = true

		if post, ok := snapshot.Get(path); ok {
			resolved = append(resolved, post)
		}
	}

	return window(resolved, offset, pageSize), nil
}
