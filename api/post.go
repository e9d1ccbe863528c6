package api

import (
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
)

type Post struct {
	Title            string    `json:"title"`
	Date             time.Time `json:"date"`
	Path             string    `json:"path"`
	PathID           string    `json:"path_id"`
	Published        bool      `json:"published"`
	Listed           bool      `json:"listed"`
	ContentType      string    `json:"content_type"`
	ProcessedContent string    `json:"processed_content,omitempty"`
	Images           []string  `json:"images"`
	HeroParagraphs   []string  `json:"hero_paragraphs"`
	HeroTruncated    bool      `json:"hero_truncated"`
}

// Page is one window of posts. Summaries in a page leave out the rendered body.
type Page struct {
	TotalMatches int    `json:"total_matches"`
	Offset       int    `json:"offset"`
	PageSize     int    `json:"page_size"`
	Posts        []Post `json:"posts"`
}

func NewPost(p *domain.Post) Post {
	out := NewPostSummary(p)
	out.ProcessedContent = p.ProcessedContent
	return out
}

func NewPostSummary(p *domain.Post) Post {
	return Post{
		Title:          p.Title,
		Date:           p.Date,
		Path:           p.Path,
		PathID:         p.PathID,
		Published:      p.Published,
		Listed:         p.Listed,
		ContentType:    p.ContentType.String(),
		Images:         nonNil(p.Images),
		HeroParagraphs: nonNil(p.HeroParagraphs),
		HeroTruncated:  p.HeroTruncated,
	}
}

func NewPage(page domain.SearchResultPage) Page {
	posts := make([]Post, 0, len(page.Posts))
	for _, p := range page.Posts {
		posts = append(posts, NewPostSummary(p))
	}
	return Page{
		TotalMatches: page.TotalMatches,
		Offset:       page.Offset,
		PageSize:     page.PageSize,
		Posts:        posts,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
