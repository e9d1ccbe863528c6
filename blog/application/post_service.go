package application

import (
	"context"
	"strings"

	"github.com/dfryer1193/blogapi/blog/domain"
)

// PostService is the read side of the blog: recent posts, search and lookup by path.
type PostService struct {
	snapshots SnapshotSource
	recency   *RecencyCache
	search    *SearchFacade
}

func NewPostService(snapshots SnapshotSource, recency *RecencyCache, search *SearchFacade) *PostService {
	return &PostService{
		snapshots: snapshots,
		recency:   recency,
		search:    search,
	}
}

func (s *PostService) Snapshot() *domain.Snapshot {
	return s.snapshots.Snapshot()
}

// Recent returns listed posts newest first.
func (s *PostService) Recent(offset, pageSize int) domain.SearchResultPage {
	return s.recency.Recent(offset, pageSize)
}

func (s *PostService) Search(ctx context.Context, query string, offset, pageSize int) (domain.SearchResultPage, error) {
	return s.search.Search(ctx, query, offset, pageSize)
}

// GetByPath looks a post up by its path, also accepting a path without the
// leading slash or one relative to the legacy /jl/blogpost/ prefix.
func (s *PostService) GetByPath(path string) (*domain.Post, bool) {
	snapshot := s.snapshots.Snapshot()

	nk := strings.ToLower(path)
	for _, candidate := range []string{nk, "/" + nk, legacyPathPrefix + nk} {
		if post, ok := snapshot.Get(candidate); ok {
			return post, true
		}
	}

	return nil, false
}
