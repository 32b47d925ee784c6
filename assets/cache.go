// Package assets keeps local copies of the images referenced by posts.
//
// Each image is stored once under <dir>/<block-id>.png and never refreshed:
// block ids are immutable, so an existing file is always reused.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/notionpub/content"
	"github.com/eringen/notionpub/metrics"
)

const (
	// DefaultURLPrefix is where the asset directory is served.
	DefaultURLPrefix = "/blogImages"
	// DefaultMaxWidth bounds the width of stored images.
	DefaultMaxWidth = 1600

	maxDownloadSize = 32 << 20
	fanOutLimit     = 8
)

// Stats counts cache outcomes since the cache was created.
type Stats struct {
	Written int
	Skipped int
	Failed  int
}

// Cache is the id-keyed image store.
type Cache struct {
	dir       string
	urlPrefix string
	maxWidth  int
	client    *http.Client
	log       *slog.Logger
	rec       metrics.Recorder

	group singleflight.Group

	mu    sync.Mutex
	stats Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Cache) { c.client = hc }
}

// WithURLPrefix sets the public path of the asset directory.
func WithURLPrefix(prefix string) Option {
	return func(c *Cache) { c.urlPrefix = prefix }
}

// WithMaxWidth sets the width above which images are scaled down. Zero keeps
// the original size.
func WithMaxWidth(px int) Option {
	return func(c *Cache) { c.maxWidth = px }
}

// WithLogger sets the logger for soft failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithRecorder reports outcomes to a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Cache) { c.rec = r }
}

// New creates a cache rooted at dir.
func New(dir string, opts ...Option) *Cache {
	c := &Cache{
		dir:       dir,
		urlPrefix: DefaultURLPrefix,
		maxWidth:  DefaultMaxWidth,
		client:    &http.Client{Timeout: 60 * time.Second},
		log:       slog.Default(),
		rec:       metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir returns the asset directory.
func (c *Cache) Dir() string { return c.dir }

// Path is the file that holds the image of block id.
func (c *Cache) Path(id string) string {
	return filepath.Join(c.dir, id+".png")
}

// URL is the public address of the image of block id.
func (c *Cache) URL(id string) string {
	return c.urlPrefix + "/" + id + ".png"
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// EnsureCached downloads url and stores it for id unless a file for id
// already exists. Failures are logged and leave no file behind; they are
// never returned. Concurrent calls for one id share a single attempt.
func (c *Cache) EnsureCached(ctx context.Context, url, id string) {
	if url == "" || id == "" {
		return
	}
	_, _, _ = c.group.Do(id, func() (any, error) {
		c.ensure(ctx, url, id)
		return nil, nil
	})
}

func (c *Cache) ensure(ctx context.Context, url, id string) {
	data, err := c.fetch(ctx, url)
	if err != nil {
		c.log.Warn("fetch image", "id", id, "url", url, "err", err)
		c.count(metrics.AssetFailed)
		return
	}

	path := c.Path(id)
	if _, err := os.Stat(path); err == nil {
		c.count(metrics.AssetSkipped)
		return
	} else if !errors.Is(err, fs.ErrNotExist) {
		c.log.Warn("stat cached image", "id", id, "path", path, "err", err)
		c.count(metrics.AssetFailed)
		return
	}

	out, err := toPNG(data, c.maxWidth)
	if err != nil {
		// Stored as-is under the .png name; browsers sniff the real format.
		c.log.Debug("keep original image bytes", "id", id, "err", err)
		out = data
	}
	if err := c.write(path, out); err != nil {
		c.log.Warn("write cached image", "id", id, "path", path, "err", err)
		c.count(metrics.AssetFailed)
		return
	}
	c.count(metrics.AssetWritten)
}

func (c *Cache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("image larger than %d bytes", maxDownloadSize)
	}
	return data, nil
}

// write stores data through a temp file so readers never see a partial image.
func (c *Cache) write(path string, data []byte) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}
	f, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (c *Cache) count(result string) {
	c.mu.Lock()
	switch result {
	case metrics.AssetWritten:
		c.stats.Written++
	case metrics.AssetSkipped:
		c.stats.Skipped++
	case metrics.AssetFailed:
		c.stats.Failed++
	}
	c.mu.Unlock()
	c.rec.IncAsset(result)
}

// EnsureAll caches every image in blocks, toggle children included, in
// parallel, and returns once all attempts finished.
func (c *Cache) EnsureAll(ctx context.Context, blocks []content.Block) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	content.Walk(blocks, func(b content.Block) {
		img, ok := b.Value.(content.Image)
		if !ok {
			return
		}
		id := b.ID
		g.Go(func() error {
			c.EnsureCached(gctx, img.URL, id)
			return nil
		})
	})
	_ = g.Wait()
}
