package notionpub

import (
	"database/sql"
	"sync"
	"time"

	"github.com/eringen/notionpub/content"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory TTL cache of the snapshot's post list, used by
// the drafts preview.
type PostCache struct {
	mu      sync.RWMutex
	posts   []content.Post
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// ensureLoaded returns cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() ([]content.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, nil
	}
	posts, err := c.store.ListAllPosts()
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []content.Post{}
	}
	c.posts = posts
	c.fetched = time.Now()
	return c.posts, nil
}

// ListAll returns every post of the snapshot, drafts included.
func (c *PostCache) ListAll() ([]content.Post, error) {
	return c.ensureLoaded()
}

// PageSet returns the snapshot's posts as a mention lookup set.
func (c *PostCache) PageSet() (*content.PageSet, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return content.NewPageSet(posts), nil
}

// Get returns a post by page id from the cache.
func (c *PostCache) Get(id string) (content.Post, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return content.Post{}, err
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return content.Post{}, ErrNotFound
}
