package rest

import (
	"context"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/dfryer1193/blogapi/content"
	"github.com/gin-gonic/gin"
)

type PostReader interface {
	Recent(offset, pageSize int) domain.SearchResultPage
	Search(ctx context.Context, query string, offset, pageSize int) (domain.SearchResultPage, error)
	GetByPath(path string) (*domain.Post, bool)
}

type IndexReader interface {
	State() domain.IndexState
	Snapshot() *domain.Snapshot
}

type HTMLSource interface {
	Key() string
	Content() string
}

type ItemSource interface {
	Items() []content.Item
}

type AppearanceSource interface {
	List() []content.Appearance
}

type PodcastSource interface {
	List() []content.Podcast
}

type SpringTipsSource interface {
	Episodes() []content.SpringTipsEpisode
	Latest() (content.SpringTipsEpisode, bool)
}

// Handlers groups what the public API reads from. Runs may be nil.
type Handlers struct {
	Posts       PostReader
	Index       IndexReader
	Runs        domain.RebuildRepository
	About       HTMLSource
	Abstracts   HTMLSource
	Books       ItemSource
	LiveLessons ItemSource
	Appearances AppearanceSource
	Podcasts    PodcastSource
	SpringTips  SpringTipsSource
}

func NewApi(router gin.IRouter, h *Handlers) {
	apiGroup := router.Group("/api")

	posts := apiGroup.Group("/posts")
	{
		posts.GET("/recent", h.GetRecentPosts)
		posts.GET("/search", h.SearchPosts)
		posts.GET("/by-path", h.GetPostByPath)
	}

	contentGroup := apiGroup.Group("/content")
	{
		contentGroup.GET("/about", h.getHTML(h.About))
		contentGroup.GET("/abstracts", h.getHTML(h.Abstracts))
		contentGroup.GET("/books", h.getItems(h.Books))
		contentGroup.GET("/livelessons", h.getItems(h.LiveLessons))
	}

	apiGroup.GET("/appearances", h.GetAppearances)
	apiGroup.GET("/podcasts", h.GetPodcasts)
	apiGroup.GET("/springtips", h.GetSpringTips)
	apiGroup.GET("/springtips/latest", h.GetLatestSpringTip)
	apiGroup.GET("/index/status", h.GetIndexStatus)
}
