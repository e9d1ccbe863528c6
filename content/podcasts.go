package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/rs/zerolog/log"
)

type Podcast struct {
	ID              int       `json:"id"`
	UID             string    `json:"uid"`
	Title           string    `json:"title"`
	Date            time.Time `json:"date"`
	EpisodePhotoURI string    `json:"episodePhotoUri,omitempty"`
	EpisodeURI      string    `json:"episodeUri,omitempty"`
	Description     string    `json:"description"`
}

type podcastSource struct {
	ID              flexInt `json:"id"`
	UID             string  `json:"uid"`
	Title           string  `json:"title"`
	Date            int64   `json:"date"`
	EpisodePhotoURI string  `json:"episodePhotoUri"`
	EpisodeURI      string  `json:"episodeUri"`
	Description     string  `json:"description"`
}

// flexInt accepts both 42 and "42".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", b, err)
	}
	*f = flexInt(n)
	return nil
}

// Podcasts mirrors the podcast site's episode list, newest first.
type Podcasts struct {
	fetcher Fetcher
	apiRoot string
	list    atomic.Pointer[[]Podcast]
}

func NewPodcasts(fetcher Fetcher, apiRoot string) *Podcasts {
	p := &Podcasts{
		fetcher: fetcher,
		apiRoot: strings.TrimSuffix(apiRoot, "/"),
	}
	p.list.Store(&[]Podcast{})
	return p
}

// OnIndexingFinished keeps the previous episodes when the site is unreachable.
func (p *Podcasts) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	url := p.apiRoot + "/site/podcasts"
	log.Info().Str("url", url).Msg("Refreshing podcasts")

	raw, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("refresh podcasts: %w", err)
	}

	var sources []podcastSource
	if err := json.Unmarshal(raw, &sources); err != nil {
		return fmt.Errorf("refresh podcasts: decode: %w", err)
	}

	list := make([]Podcast, 0, len(sources))
	for _, s := range sources {
		episodeURI := ""
		if s.EpisodeURI != "" {
			episodeURI = p.apiRoot + s.EpisodeURI
		}

		list = append(list, Podcast{
			ID:              int(s.ID),
			UID:             s.UID,
			Title:           s.Title,
			Date:            time.UnixMilli(s.Date).UTC(),
			EpisodePhotoURI: s.EpisodePhotoURI,
			EpisodeURI:      episodeURI,
			Description:     s.Description,
		})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})

	p.list.Store(&list)
	return nil
}

func (p *Podcasts) List() []Podcast {
	return *p.list.Load()
}
