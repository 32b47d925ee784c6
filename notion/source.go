package notion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/notionpub/content"
)

// childFetchLimit bounds concurrent child listings per page. The client's
// rate limiter is the real throttle.
const childFetchLimit = 4

// Source reads posts and page bodies from Notion. Network and API failures
// while reading bodies and external posts are logged and surface as empty
// results. A failed posts query and malformed records are errors.
type Source struct {
	client *Client
	log    *slog.Logger
}

// NewSource wraps a client. A nil logger means slog.Default().
func NewSource(client *Client, log *slog.Logger) *Source {
	if log == nil {
		log = slog.Default()
	}
	return &Source{client: client, log: log}
}

// Posts lists every row of the posts database, drafts included. A failed
// query is returned so a build never mistakes an outage for an empty site.
func (s *Source) Posts(ctx context.Context, databaseID string) ([]content.Post, error) {
	pages, err := s.client.QueryDatabaseAll(ctx, databaseID, nil)
	if err != nil {
		return nil, fmt.Errorf("query posts database %s: %w", databaseID, err)
	}
	posts := make([]content.Post, 0, len(pages))
	for i := range pages {
		if pages[i].Archived {
			continue
		}
		p, err := ToPost(&pages[i])
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

// ExternalPosts lists the external posts database. An empty id yields nothing.
func (s *Source) ExternalPosts(ctx context.Context, databaseID string) []content.ExternalPost {
	if databaseID == "" {
		return nil
	}
	pages, err := s.client.QueryDatabaseAll(ctx, databaseID, &QueryOptions{
		Sorts: []Sort{{Timestamp: "created_time", Direction: "descending"}},
	})
	if err != nil {
		s.log.Warn("query external posts database", "database", databaseID, "err", err)
		return nil
	}
	out := make([]content.ExternalPost, 0, len(pages))
	for i := range pages {
		if !pages[i].Archived {
			out = append(out, ToExternalPost(&pages[i]))
		}
	}
	return out
}

// Page fetches a page's current metadata. It returns nil without error when
// the fetch fails.
func (s *Source) Page(ctx context.Context, id string) (*content.Post, error) {
	page, err := s.client.GetPage(ctx, id)
	if err != nil {
		s.log.Warn("get page", "id", id, "err", err)
		return nil, nil
	}
	p, err := ToPost(page)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Blocks fetches the body of a page. Toggles that report children get one
// extra level resolved; toggles nested inside them keep nil children.
func (s *Source) Blocks(ctx context.Context, pageID string) []content.Block {
	top, err := s.client.GetBlockChildrenAll(ctx, pageID)
	if err != nil {
		s.log.Warn("list blocks", "page", pageID, "err", err)
		return nil
	}
	blocks := make([]content.Block, len(top))
	for i := range top {
		blocks[i] = ToBlock(&top[i])
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(childFetchLimit)
	for i := range blocks {
		b := blocks[i]
		if !b.HasChildren || !b.Type.SupportsChildren() {
			continue
		}
		g.Go(func() error {
			children := s.children(gctx, b.ID)
			mu.Lock()
			defer mu.Unlock()
			if t, ok := blocks[i].Value.(content.Toggle); ok && t.Children == nil {
				t.Children = children
				blocks[i].Value = t
			}
			return nil
		})
	}
	_ = g.Wait()
	return blocks
}

func (s *Source) children(ctx context.Context, blockID string) []content.Block {
	raw, err := s.client.GetBlockChildrenAll(ctx, blockID)
	if err != nil {
		s.log.Warn("list child blocks", "block", blockID, "err", err)
		return nil
	}
	out := make([]content.Block, len(raw))
	for i := range raw {
		out[i] = ToBlock(&raw[i])
	}
	return out
}
