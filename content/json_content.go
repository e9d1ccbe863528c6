package content

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/rs/zerolog/log"
)

// Item is one book or lesson.
type Item struct {
	Title    string `json:"title"`
	HTML     string `json:"html"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type itemSource struct {
	Title    string `json:"title"`
	HTML     string `json:"html"`
	HTMLRef  string `json:"htmlRef"`
	ImageURL string `json:"imageUrl"`
}

// JSONContent re-reads a JSON file from the working tree on every index.
// Entries may point at a post with htmlRef instead of carrying their own html.
type JSONContent struct {
	name  string
	file  string
	items atomic.Pointer[[]Item]
}

// NewJSONContent serves <root>/content/<name>.
func NewJSONContent(root, name string) *JSONContent {
	c := &JSONContent{
		name: name,
		file: filepath.Join(root, "content", name),
	}
	c.items.Store(&[]Item{})
	return c
}

// OnIndexingFinished keeps the previous items when the file cannot be loaded.
func (c *JSONContent) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	items, err := c.load(evt.Snapshot)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", c.name, err)
	}

	c.items.Store(&items)
	log.Info().Str("file", c.name).Int("items", len(items)).Msg("Refreshed content")
	return nil
}

func (c *JSONContent) load(snapshot *domain.Snapshot) ([]Item, error) {
	raw, err := os.ReadFile(c.file)
	if err != nil {
		return nil, err
	}

	var sources []itemSource
	if err := json.Unmarshal(raw, &sources); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.file, err)
	}

	items := make([]Item, 0, len(sources))
	for i, s := range sources {
		html := s.HTML
		if html == "" {
			if s.HTMLRef == "" {
				return nil, fmt.Errorf("entry %d (%q) has neither html nor htmlRef", i, s.Title)
			}
			post, ok := snapshot.Get(s.HTMLRef)
			if !ok {
				return nil, &domain.UnresolvedReferenceError{Source: c.name, Ref: s.HTMLRef}
			}
			html = post.ProcessedContent
		}

		items = append(items, Item{
			Title:    s.Title,
			HTML:     html,
			ImageURL: s.ImageURL,
		})
	}

	return items, nil
}

func (c *JSONContent) Name() string {
	return c.name
}

func (c *JSONContent) Items() []Item {
	return *c.items.Load()
}
