package domain

import (
	"context"
)

// SearchDocument is the search engine's view of a post.
type SearchDocument struct {
	Key             string
	Path            string
	Title           string
	OriginalContent string
	Content         string
	Time            int64
	Published       bool
}

// SearchEngine is the full-text index collaborator.
type SearchEngine interface {
	// Upsert writes docs keyed by SearchDocument.Key as one batch tagged with
	// generation, and retires every document the batch did not write.
	Upsert(ctx context.Context, generation string, docs []SearchDocument) error

	// Query returns matching paths in relevance order, at most maxResults.
	Query(ctx context.Context, text string, maxResults int) ([]string, error)
}
