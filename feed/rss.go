package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/dfryer1193/blogapi/blog/application"
	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/gorilla/feeds"
	"github.com/rs/zerolog/log"
)

// Config describes the channel.
type Config struct {
	Title        string
	Link         string
	Description  string
	EntryBaseURL string
}

// RSS renders published posts, newest first, as an RSS 2.0 document after
// every index. The document is empty until the first index finishes.
type RSS struct {
	cfg Config
	xml atomic.Pointer[string]
}

func NewRSS(cfg Config) *RSS {
	cfg.EntryBaseURL = strings.TrimSuffix(cfg.EntryBaseURL, "/")
	r := &RSS{cfg: cfg}
	r.xml.Store(new(string))
	return r
}

// OnIndexingFinished keeps the previous document if rendering fails.
func (r *RSS) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	xml, err := r.render(evt.Snapshot)
	if err != nil {
		return fmt.Errorf("render rss: %w", err)
	}

	r.xml.Store(&xml)
	log.Info().Str("runID", evt.RunID).Int("bytes", len(xml)).Msg("Rendered RSS feed")
	return nil
}

func (r *RSS) render(snapshot *domain.Snapshot) (string, error) {
	f := &feeds.Feed{
		Title:       r.cfg.Title,
		Link:        &feeds.Link{Href: r.cfg.Link},
		Description: r.cfg.Description,
		Created:     snapshot.BuiltAt(),
	}

	for _, post := range application.NewestFirst(snapshot) {
		if !post.Published {
			continue
		}
		f.Add(r.item(post))
	}

	return f.ToRss()
}

func (r *RSS) item(post *domain.Post) *feeds.Item {
	description := ""
	if len(post.HeroParagraphs) > 0 {
		description = post.HeroParagraphs[0]
	}

	link := r.cfg.EntryBaseURL + post.Path
	return &feeds.Item{
		Title:       post.Title,
		Link:        &feeds.Link{Href: link},
		Id:          link,
		Description: description,
		Created:     post.Date,
	}
}

// XML returns the last rendered document.
func (r *RSS) XML() string {
	return *r.xml.Load()
}

func (r *RSS) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(r.XML()))
}
