// Package notionpub builds a static blog from a Notion database.
//
// An App fetches posts and their block trees through a Source, caches the
// images they reference, renders one page per published post plus an index
// and feed per language, and records everything in a SQLite snapshot that
// powers offline rebuilds and the drafts preview of the development server.
package notionpub

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/notionpub/assets"
	"github.com/eringen/notionpub/content"
	"github.com/eringen/notionpub/metrics"
	"github.com/eringen/notionpub/notion"
)

// Source is where posts come from. notion.Source is the production
// implementation. Fetch failures degrade to empty results; only malformed
// content is reported as an error.
type Source interface {
	Posts(ctx context.Context, databaseID string) ([]content.Post, error)
	ExternalPosts(ctx context.Context, databaseID string) []content.ExternalPost
	Page(ctx context.Context, id string) (*content.Post, error)
	Blocks(ctx context.Context, pageID string) []content.Block
}

// App is the central notionpub application. It wires together the source,
// asset cache, snapshot store, renderer and preview server.
type App struct {
	Config SiteConfig
	Log    *slog.Logger
	Store  *Store
	Cache  *PostCache
	Assets *assets.Cache
	Echo   *echo.Echo

	source     Source
	recorder   metrics.Recorder
	registry   *prom.Registry
	httpClient *http.Client

	loginLimiter *LoginLimiter
	buildMu      sync.Mutex
}

// Option configures additional App behavior.
type Option func(*App)

// WithSource replaces the Notion source, e.g. with a fake in tests.
func WithSource(s Source) Option {
	return func(a *App) {
		a.source = s
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithHTTPClient sets the client used for the Notion API and image downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithRecorder reports build metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(a *App) {
		a.recorder = r
	}
}

// WithMetrics records build metrics in reg and serves them at /metrics.
func WithMetrics(reg *prom.Registry) Option {
	return func(a *App) {
		a.registry = reg
		a.recorder = metrics.NewPrometheusRecorder(reg)
	}
}

// New creates an App. cfg gets its defaults applied.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:     cfg,
		Echo:       echo.New(),
		Log:        slog.Default(),
		recorder:   metrics.NoopRecorder{},
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.source == nil {
		client := notion.NewClient(cfg.NotionToken, notion.WithHTTPClient(a.httpClient))
		a.source = notion.NewSource(client, a.Log.With("component", "notion"))
	}
	a.Assets = assets.New(
		filepath.Join(cfg.PublicDir, cfg.AssetDir),
		assets.WithURLPrefix("/"+filepath.ToSlash(cfg.AssetDir)),
		assets.WithMaxWidth(cfg.ImageMaxWidth),
		assets.WithHTTPClient(a.httpClient),
		assets.WithLogger(a.Log.With("component", "assets")),
		assets.WithRecorder(a.recorder),
	)
	return a
}

// open initializes the snapshot store and its cache once.
func (a *App) open() error {
	if a.Store != nil {
		return nil
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("notionpub: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(store, a.Config.PostCacheTTL)
	return nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
