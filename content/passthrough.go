package content

import (
	"context"
	"sync/atomic"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/rs/zerolog/log"
)

// Well-known pages served verbatim from the index.
const (
	AboutPath     = "/about.html"
	AbstractsPath = "/abstracts.html"
)

// HTMLPassthrough serves one post's rendered HTML. It is empty until the first
// index finishes, and empty again if a later index no longer has the page.
type HTMLPassthrough struct {
	key  string
	html atomic.Pointer[string]
}

func NewHTMLPassthrough(key string) *HTMLPassthrough {
	p := &HTMLPassthrough{key: key}
	p.html.Store(new(string))
	return p
}

func (p *HTMLPassthrough) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	html := ""
	if post, ok := evt.Snapshot.Get(p.key); ok {
		html = post.ProcessedContent
	} else {
		log.Warn().
			Err(&domain.UnresolvedReferenceError{Source: "passthrough", Ref: p.key}).
			Msg("Serving empty content")
	}
	p.html.Store(&html)
	return nil
}

func (p *HTMLPassthrough) Key() string {
	return p.key
}

func (p *HTMLPassthrough) Content() string {
	return *p.html.Load()
}
