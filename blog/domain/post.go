package domain

import (
	"sort"
	"time"
)

// ContentType is the source format of a post.
type ContentType int

const (
	ContentTypeMarkdown ContentType = iota
	ContentTypeHTML
)

func (c ContentType) String() string {
	switch c {
	case ContentTypeMarkdown:
		return "MARKDOWN"
	case ContentTypeHTML:
		return "HTML"
	default:
		return "UNKNOWN"
	}
}

// Post represents a blog post
// A post is built from a single file in the content tree. Once constructed it is
// never modified; a change to the file produces a new Post in a new Snapshot.
type Post struct {
	Title            string
	Date             time.Time
	OriginalContent  string
	ProcessedContent string
	Published        bool
	Listed           bool
	ContentType      ContentType
	Path             string
	PathID           string
	Images           []string
	HeroParagraphs   []string
	HeroTruncated    bool
}

// Snapshot is one complete index generation.
type Snapshot struct {
	index   map[string]*Post
	builtAt time.Time
}

// NewSnapshot takes ownership of index; callers must not modify it afterwards.
func NewSnapshot(index map[string]*Post, builtAt time.Time) *Snapshot {
	if index == nil {
		index = map[string]*Post{}
	}
	return &Snapshot{index: index, builtAt: builtAt}
}

// EmptySnapshot is what readers observe before the first successful rebuild.
func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil, time.Time{})
}

func (s *Snapshot) Get(path string) (*Post, bool) {
	p, ok := s.index[path]
	return p, ok
}

func (s *Snapshot) Len() int {
	return len(s.index)
}

func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Paths returns the index keys in ascending order.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.index))
	for p := range s.index {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Posts returns every post ordered by path.
func (s *Snapshot) Posts() []*Post {
	posts := make([]*Post, 0, len(s.index))
	for _, p := range s.Paths() {
		posts = append(posts, s.index[p])
	}
	return posts
}

// SearchResultPage is one window over an ordered result set.
type SearchResultPage struct {
	TotalMatches int
	Offset       int
	PageSize     int
	Posts        []*Post
}
