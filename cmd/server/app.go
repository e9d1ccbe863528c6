package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dfryer1193/blogapi/blog/application"
	"github.com/dfryer1193/blogapi/blog/persistence"
	"github.com/dfryer1193/blogapi/content"
	"github.com/dfryer1193/blogapi/feed"
	"github.com/dfryer1193/blogapi/internal/config"
	"github.com/dfryer1193/blogapi/internal/middleware"
	"github.com/dfryer1193/blogapi/internal/rest"
	"github.com/dfryer1193/blogapi/internal/stream"
	"github.com/dfryer1193/blogapi/shared/db/sqlite"
	"github.com/dfryer1193/blogapi/shared/git"
	webhook "github.com/dfryer1193/blogapi/webhook/http"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// app holds every long-lived component of the service.
type app struct {
	cfg         *config.Config
	db          *sqlite.SQLiteDB
	coordinator *application.IndexCoordinator
	rss         *feed.RSS
	events      *stream.Broadcaster
	handlers    *rest.Handlers
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.Database.Path})
	if err := database.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	engine := persistence.NewSearchRepository(database.DB())
	runs := persistence.NewRebuildRepository(database.DB())

	parser := application.NewPostParser(
		application.NewMarkdownRenderer(cfg.Blog.APIRoot),
		cfg.Blog.APIRoot,
		cfg.Blog.HeroParagraphs,
	)
	builder := application.NewIndexBuilder(parser, engine, cfg.Blog.Workers)
	bus := application.NewEventBus()

	coordinator := application.NewIndexCoordinator(
		application.CoordinatorConfig{
			RemoteURI:   cfg.Blog.GitRepository,
			LocalDir:    cfg.Blog.LocalCloneDirectory,
			ForceReset:  cfg.Blog.ResetOnRebuild,
			SyncTimeout: cfg.Blog.SyncTimeout.Duration,
		},
		git.NewWorkingTree(cfg.Blog.CloneDepth),
		builder,
		bus,
		runs,
	)

	recency := application.NewRecencyCache()
	search := application.NewSearchFacade(engine, coordinator, cfg.Blog.MaxSearchResults)
	posts := application.NewPostService(coordinator, recency, search)

	fetcher := content.NewHTTPFetcher(cfg.Content.FetchTimeout.Duration)
	springTipsURL := cfg.Content.SpringTipsURL
	if springTipsURL == "" {
		springTipsURL = content.DefaultSpringTipsURL
	}

	about := content.NewHTMLPassthrough(content.AboutPath)
	abstracts := content.NewHTMLPassthrough(content.AbstractsPath)
	books := content.NewJSONContent(cfg.Blog.LocalCloneDirectory, "books.json")
	liveLessons := content.NewJSONContent(cfg.Blog.LocalCloneDirectory, "livelessons.json")
	appearances := content.NewAppearances(cfg.Blog.LocalCloneDirectory)
	podcasts := content.NewPodcasts(fetcher, cfg.Blog.APIRoot)
	springTips := content.NewSpringTips(fetcher, springTipsURL)

	rss := feed.NewRSS(feed.Config{
		Title:        cfg.Feed.Title,
		Link:         cfg.Feed.Link,
		Description:  cfg.Feed.Description,
		EntryBaseURL: cfg.EntryBaseURL(),
	})
	events := stream.NewBroadcaster()

	// Derived views refresh in this order after every successful rebuild.
	for _, l := range []any{recency, about, abstracts, books, liveLessons, appearances, podcasts, springTips, rss, events} {
		bus.Subscribe(l)
	}

	return &app{
		cfg:         cfg,
		db:          database,
		coordinator: coordinator,
		rss:         rss,
		events:      events,
		handlers: &rest.Handlers{
			Posts:       posts,
			Index:       coordinator,
			Runs:        runs,
			About:       about,
			Abstracts:   abstracts,
			Books:       books,
			LiveLessons: liveLessons,
			Appearances: appearances,
			Podcasts:    podcasts,
			SpringTips:  springTips,
		},
	}, nil
}

// router serves the webhook, feed, media and event stream directly and hands /api to gin.
func (a *app) router() http.Handler {
	api := gin.New()
	api.Use(middleware.LoggingMiddleware())
	api.Use(gin.CustomRecovery(middleware.HandlePanics()))
	api.Use(middleware.CORS(a.cfg.Server.CORSHosts))
	rest.NewApi(api, a.handlers)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	webhook.NewWebhookHandler(
		webhook.NewAuthenticator(a.cfg.Blog.IndexRebuildKey),
		a.coordinator,
		a.cfg.Blog.RebuildTimeout.Duration,
	).RegisterRoutes(r)

	r.Get("/feed.xml", a.rss.ServeHTTP)
	r.Handle("/media/*", mediaHandler(filepath.Join(a.cfg.Blog.LocalCloneDirectory, "content", "media")))
	r.Handle("/events", a.events)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","state":%q}`, a.coordinator.State())
	})
	r.Mount("/api", api)

	return r
}

// mediaHandler serves images out of the working tree to any origin.
func mediaHandler(dir string) http.Handler {
	files := http.StripPrefix("/media/", http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		files.ServeHTTP(w, r)
	})
}

func (a *app) Close() error {
	if err := a.events.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close event stream")
	}
	if err := a.coordinator.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to gracefully close index coordinator")
	}
	return a.db.Close()
}
