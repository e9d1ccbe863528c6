package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/rs/zerolog/log"
)

// DefaultSpringTipsURL is the published episode list.
const DefaultSpringTipsURL = "https://springtipslive.io/episodes.json"

const springTipsDate = "2006-1-2"

type SpringTipsEpisode struct {
	BlogURL         string    `json:"blogUrl"`
	Date            time.Time `json:"date"`
	SeasonNumber    int       `json:"seasonNumber"`
	Title           string    `json:"title"`
	YoutubeEmbedURL string    `json:"youtubeEmbedUrl"`
	YoutubeID       string    `json:"youtubeId"`
}

// SpringTips mirrors the Spring Tips episode list.
type SpringTips struct {
	fetcher  Fetcher
	url      string
	episodes atomic.Pointer[[]SpringTipsEpisode]
}

func NewSpringTips(fetcher Fetcher, url string) *SpringTips {
	if url == "" {
		url = DefaultSpringTipsURL
	}
	s := &SpringTips{fetcher: fetcher, url: url}
	s.episodes.Store(&[]SpringTipsEpisode{})
	return s
}

func (s *SpringTips) OnIndexingFinished(ctx context.Context, evt domain.IndexingFinished) error {
	raw, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return fmt.Errorf("refresh spring tips: %w", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return fmt.Errorf("refresh spring tips: decode: %w", err)
	}

	episodes := make([]SpringTipsEpisode, 0, len(rows))
	for i, row := range rows {
		episode, err := episodeFrom(row)
		if err != nil {
			return fmt.Errorf("refresh spring tips: episode %d: %w", i, err)
		}
		episodes = append(episodes, episode)
	}

	s.episodes.Store(&episodes)
	log.Info().Int("episodes", len(episodes)).Msg("Refreshed Spring Tips episodes")
	return nil
}

// episodeFrom reads one row. The feed is exported from a spreadsheet, so
// numbers may arrive quoted or bare.
func episodeFrom(row map[string]any) (SpringTipsEpisode, error) {
	field := func(key string) string {
		v, ok := row[key]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}

	date, err := time.ParseInLocation(springTipsDate, field("date"), time.UTC)
	if err != nil {
		return SpringTipsEpisode{}, fmt.Errorf("date: %w", err)
	}

	season, err := strconv.Atoi(field("season_number"))
	if err != nil {
		return SpringTipsEpisode{}, fmt.Errorf("season_number: %w", err)
	}

	return SpringTipsEpisode{
		BlogURL:         field("blog_url"),
		Date:            date,
		SeasonNumber:    season,
		Title:           field("title"),
		YoutubeEmbedURL: field("youtube_embed_url"),
		YoutubeID:       field("youtube_id"),
	}, nil
}

func (s *SpringTips) Episodes() []SpringTipsEpisode {
	return *s.episodes.Load()
}

// Latest returns the most recent episode, if any have been loaded.
func (s *SpringTips) Latest() (SpringTipsEpisode, bool) {
	episodes := s.Episodes()
	if len(episodes) == 0 {
		return SpringTipsEpisode{}, false
	}

	latest := episodes[0]
	for _, e := range episodes[1:] {
		if e.Date.After(latest.Date) {
			latest = e
		}
	}
	return latest, true
}
