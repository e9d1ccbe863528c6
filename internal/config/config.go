// Package config loads the service configuration.
// Sources, lowest precedence first: built-in defaults, a TOML file, environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvConfigPath    = "BLOG_CONFIG"
	EnvRebuildKey    = "BLOG_REBUILD_KEY"
	EnvGitRepository = "BLOG_GIT_REPOSITORY"
	EnvLocalClone    = "BLOG_LOCAL_CLONE_DIRECTORY"
	EnvAPIRoot       = "BLOG_API_ROOT"
	EnvDatabasePath  = "SQLITE_DB_PATH"
	EnvListenAddr    = "BLOG_LISTEN_ADDR"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Blog     BlogConfig     `toml:"blog"`
	Schedule ScheduleConfig `toml:"schedule"`
	Database DatabaseConfig `toml:"database"`
	Feed     FeedConfig     `toml:"feed"`
	Content  ContentConfig  `toml:"content"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	ListenAddr      string   `toml:"listen_addr"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	CORSHosts       []string `toml:"cors_hosts"`
}

type BlogConfig struct {
	GitRepository       string   `toml:"git_repository"`
	LocalCloneDirectory string   `toml:"local_clone_directory"`
	ResetOnRebuild      bool     `toml:"reset_on_rebuild"`
	IndexRebuildKey     string   `toml:"index_rebuild_key"`
	APIRoot             string   `toml:"api_root"`
	CloneDepth          int      `toml:"clone_depth"`
	SyncTimeout         Duration `toml:"sync_timeout"`
	RebuildTimeout      Duration `toml:"rebuild_timeout"`
	HeroParagraphs      int      `toml:"hero_paragraphs"`
	MaxSearchResults    int      `toml:"max_search_results"`
	Workers             int      `toml:"workers"`
}

type ScheduleConfig struct {
	// Rebuild is a cron spec. Empty disables scheduled rebuilds.
	Rebuild       string   `toml:"rebuild"`
	Watch         bool     `toml:"watch"`
	WatchDebounce Duration `toml:"watch_debounce"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type FeedConfig struct {
	Title        string `toml:"title"`
	Link         string `toml:"link"`
	Description  string `toml:"description"`
	EntryBaseURL string `toml:"entry_base_url"`
}

type ContentConfig struct {
	// SpringTipsURL overrides the published episode list.
	SpringTipsURL string   `toml:"spring_tips_url"`
	FetchTimeout  Duration `toml:"fetch_timeout"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration reads TOML strings such as "30s" or "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ShutdownTimeout: Duration{5 * time.Second},
			CORSHosts:       []string{"http://localhost:3000"},
		},
		Blog: BlogConfig{
			LocalCloneDirectory: "./content-clone",
			ResetOnRebuild:      true,
			APIRoot:             "http://localhost:8080",
			CloneDepth:          1,
			SyncTimeout:         Duration{2 * time.Minute},
			RebuildTimeout:      Duration{10 * time.Minute},
			HeroParagraphs:      1,
			MaxSearchResults:    1000,
		},
		Schedule: ScheduleConfig{
			Rebuild:       "@daily",
			WatchDebounce: Duration{2 * time.Second},
		},
		Database: DatabaseConfig{
			Path: "./blogapi.db",
		},
		Feed: FeedConfig{
			Title:       "Blog",
			Link:        "http://localhost:8080",
			Description: "Recent posts",
		},
		Content: ContentConfig{
			FetchTimeout: Duration{30 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load merges defaults, the TOML file at path and the environment, then validates the result.
// An empty path falls back to $BLOG_CONFIG; with neither set only defaults and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		warnUnknownKeys(meta, path)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvRebuildKey, &c.Blog.IndexRebuildKey},
		{EnvGitRepository, &c.Blog.GitRepository},
		{EnvLocalClone, &c.Blog.LocalCloneDirectory},
		{EnvAPIRoot, &c.Blog.APIRoot},
		{EnvDatabasePath, &c.Database.Path},
		{EnvListenAddr, &c.Server.ListenAddr},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Blog.GitRepository == "" {
		errs = append(errs, errors.New("blog.git_repository is required"))
	}
	if c.Blog.LocalCloneDirectory == "" {
		errs = append(errs, errors.New("blog.local_clone_directory is required"))
	}
	if c.Blog.IndexRebuildKey == "" {
		errs = append(errs, errors.New("blog.index_rebuild_key is required"))
	}
	if u, err := url.Parse(c.Blog.APIRoot); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("blog.api_root must be an absolute URL, got %q", c.Blog.APIRoot))
	}
	if c.Blog.HeroParagraphs < 1 {
		errs = append(errs, errors.New("blog.hero_paragraphs must be at least 1"))
	}
	if c.Blog.MaxSearchResults < 1 {
		errs = append(errs, errors.New("blog.max_search_results must be at least 1"))
	}
	if c.Blog.CloneDepth < 0 {
		errs = append(errs, errors.New("blog.clone_depth must not be negative"))
	}
	if c.Blog.RebuildTimeout.Duration < 0 {
		errs = append(errs, errors.New("blog.rebuild_timeout must not be negative"))
	}
	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	for _, host := range c.Server.CORSHosts {
		if host != "*" && !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
			errs = append(errs, fmt.Errorf("server.cors_hosts entries must be * or start with http:// or https://, got %q", host))
		}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// EntryBaseURL is where feed entries link to; it defaults to the feed link.
func (c *Config) EntryBaseURL() string {
	if c.Feed.EntryBaseURL != "" {
		return c.Feed.EntryBaseURL
	}
	return strings.TrimSuffix(c.Feed.Link, "/")
}

func warnUnknownKeys(meta toml.MetaData, path string) {
	for _, key := range meta.Undecoded() {
		log.Warn().Str("key", key.String()).Str("file", path).Msg("Ignoring unknown config key")
	}
}
