package application

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/rs/zerolog/log"
)

// RecencyCache keeps the latest snapshot's posts sorted newest first so that
// paging through recent posts never re-sorts the index.
type RecencyCache struct {
	ordered atomic.Pointer[[]*domain.Post]
}

func NewRecencyCache() *RecencyCache {
	c := &RecencyCache{}
	c.ordered.Store(&[]*domain.Post{})
	return c
}

func (c *RecencyCache) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	ordered := NewestFirst(evt.Snapshot)
	c.ordered.Store(&ordered)

	log.Info().Int("posts", len(ordered)).Msg("Cached posts newest to oldest")
	return nil
}

// Recent pages through listed posts, newest first.
func (c *RecencyCache) Recent(offset, pageSize int) domain.SearchResultPage {
	all := *c.ordered.Load()

	listed := make([]*domain.Post, 0, len(all))
	for _, p := range all {
		if p.Listed {
			listed = append(listed, p)
		}
	}

	return window(listed, offset, pageSize)
}

// NewestFirst orders a snapshot's posts by date descending, then by path.
func NewestFirst(s *domain.Snapshot) []*domain.Post {
	posts := s.Posts()
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Path < posts[j].Path
	})
	return posts
}

// window applies offset/pageSize to an already ordered result set. Negative
// arguments are treated as zero; an offset past the end yields no posts.
func window(posts []*domain.Post, offset, pageSize int) domain.SearchResultPage {
	offset = max(offset, 0)
	pageSize = max(pageSize, 0)

	start := min(offset, len(posts))
	end := min(start+pageSize, len(posts))

	page := make([]*domain.Post, end-start)
	copy(page, posts[start:end])

	return domain.SearchResultPage{
		TotalMatches: len(posts),
		Offset:       offset,
		PageSize:     pageSize,
		Posts:        page,
	}
}
