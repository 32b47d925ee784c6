package notionpub

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/notionpub/blocks"
	"github.com/eringen/notionpub/content"
	"github.com/eringen/notionpub/markdown"
	"github.com/eringen/notionpub/metrics"
	"github.com/eringen/notionpub/views"
)

// BuildOptions controls a single build.
type BuildOptions struct {
	// Offline renders from the stored snapshot instead of calling Notion.
	Offline bool
}

// snapshot is the input of the render phase.
type snapshot struct {
	posts    []StoredPost
	external []content.ExternalPost
}

// Build fetches content (or loads the snapshot when offline), renders the
// site into Config.OutputDir and returns the manifest of the written files.
// Fetch failures degrade to empty content; malformed content aborts the build.
func (a *App) Build(ctx context.Context, opts BuildOptions) (m *Manifest, err error) {
	a.buildMu.Lock()
	defer a.buildMu.Unlock()

	started := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			outcome = metrics.OutcomeCanceled
		case err != nil:
			outcome = metrics.OutcomeFailed
		}
		a.recorder.IncBuildOutcome(outcome)
		a.recorder.ObserveBuildDuration(time.Since(started))
	}()

	if err := a.Config.Validate(opts.Offline); err != nil {
		return nil, fmt.Errorf("notionpub: config: %w", err)
	}
	if err := a.open(); err != nil {
		return nil, err
	}

	var snap *snapshot
	if opts.Offline {
		snap, err = a.loadSnapshot()
	} else {
		snap, err = a.fetch(ctx)
	}
	if err != nil {
		return nil, err
	}

	m = newManifest(opts.Offline, started)
	if err := a.render(ctx, snap, m); err != nil {
		return nil, err
	}
	a.Cache.Invalidate()

	a.Log.Info("build complete",
		"build_id", m.BuildID,
		"offline", opts.Offline,
		"pages", len(m.Pages),
		"assets", len(m.Assets),
		"duration", time.Since(started).Round(time.Millisecond))
	return m, nil
}

// fetch pulls every post from Notion, resolves the bodies of the posts that
// will be rendered or previewed, caches their images and stores the result.
func (a *App) fetch(ctx context.Context) (*snapshot, error) {
	posts, err := a.source.Posts(ctx, a.Config.DatabaseID)
	if err != nil {
		return nil, fmt.Errorf("notionpub: fetch posts: %w", err)
	}
	external := a.source.ExternalPosts(ctx, a.Config.ExternalDatabaseID)
	a.Log.Info("fetched posts", "posts", len(posts), "external", len(external))

	stored := make([]StoredPost, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.Workers)
	for i, p := range posts {
		stored[i].Post = p
		if !a.needsBody(p) {
			continue
		}
		g.Go(func() error {
			meta, err := a.source.Page(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("notionpub: page %s: %w", p.ID, err)
			}
			if meta != nil {
				stored[i].Post = *meta
			}
			body := a.source.Blocks(gctx, p.ID)
			if body == nil {
				body = []content.Block{}
			}
			stored[i].Blocks = body
			a.Assets.EnsureAll(gctx, body)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := a.Store.SaveSnapshot(stored, external); err != nil {
		return nil, fmt.Errorf("notionpub: save snapshot: %w", err)
	}
	return &snapshot{posts: stored, external: external}, nil
}

// needsBody reports whether the post's blocks are fetched: always for posts
// that get a page, and for drafts when the preview is enabled.
func (a *App) needsBody(p content.Post) bool {
	if p.Published && p.Slug != "" {
		return true
	}
	return a.Config.DraftsEnabled()
}

// loadSnapshot reads the posts and bodies stored by the last online build.
func (a *App) loadSnapshot() (*snapshot, error) {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return nil, fmt.Errorf("notionpub: load snapshot: %w", err)
	}
	stored := make([]StoredPost, 0, len(posts))
	for _, p := range posts {
		sp, err := a.Store.GetPost(p.ID)
		if err != nil {
			return nil, fmt.Errorf("notionpub: load snapshot: %w", err)
		}
		stored = append(stored, sp)
	}
	external, err := a.Store.ListExternalPosts()
	if err != nil {
		return nil, fmt.Errorf("notionpub: load snapshot: %w", err)
	}
	a.Log.Info("loaded snapshot", "posts", len(stored), "external", len(external))
	return &snapshot{posts: stored, external: external}, nil
}

// validSlug rejects slugs that cannot name a single directory.
func validSlug(slug string) bool {
	if slug == "" || slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, `/\`)
}

// slugTaken reports whether the page directory of p would land on another
// language's index or a file the build writes itself.
func (a *App) slugTaken(p content.Post) bool {
	dir := a.language(p.Language).Path + p.Slug + "/"
	for _, l := range a.Config.Languages {
		if strings.HasPrefix(l.Path, dir) {
			return true
		}
	}
	if a.language(p.Language).Path != "/" {
		return false
	}
	switch p.Slug {
	case "index.html", "feed.xml", "sitemap.xml", "404.html", "style.css", manifestFileName:
		return true
	}
	return strings.Split(filepath.ToSlash(a.Config.AssetDir), "/")[0] == p.Slug
}

// render writes every page of the site and the manifest.
func (a *App) render(ctx context.Context, snap *snapshot, m *Manifest) error {
	out := a.Config.OutputDir
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("notionpub: create output dir: %w", err)
	}
	prev, err := readManifest(out)
	if err != nil {
		a.Log.Warn("ignoring previous manifest", "err", err)
	}

	all := make([]content.Post, len(snap.posts))
	bodies := make(map[string][]content.Block, len(snap.posts))
	for i, sp := range snap.posts {
		all[i] = sp.Post
		bodies[sp.ID] = sp.Blocks
	}
	pages := content.NewPageSet(all)

	var published []content.Post
	for _, p := range content.Publishable(all) {
		if !validSlug(p.Slug) || a.slugTaken(p) {
			a.Log.Warn("skipping post with unusable slug", "id", p.ID, "slug", p.Slug)
			continue
		}
		if len(p.Title) == 0 {
			return fmt.Errorf("notionpub: post %s has no title", p.ID)
		}
		published = append(published, p)
	}
	content.SortByDateDesc(published)

	for _, p := range published {
		if err := ctx.Err(); err != nil {
			return err
		}
		lang := a.language(p.Language)
		rel := path.Join(strings.Trim(lang.Path, "/"), p.Slug, "index.html")
		began := time.Now()
		page := a.postPage(pages, p, bodies[p.ID], false)
		sum, err := a.writeComponent(ctx, rel, page)
		if err != nil {
			return err
		}
		a.recorder.ObservePageRender(time.Since(began))
		m.Pages = append(m.Pages, ManifestPage{
			PageID:     p.ID,
			Language:   lang.Code,
			Route:      a.postPath(p),
			Output:     rel,
			Checksum:   sum,
			EditedTime: p.EditedTime,
		})
		content.Walk(bodies[p.ID], func(b content.Block) {
			if _, ok := b.Value.(content.Image); !ok {
				return
			}
			info, err := os.Stat(a.Assets.Path(b.ID))
			if err != nil {
				return
			}
			m.Assets = append(m.Assets, ManifestAsset{
				BlockID: b.ID,
				Output:  path.Join(filepath.ToSlash(a.Config.AssetDir), b.ID+".png"),
				Size:    info.Size(),
			})
		})
	}

	for _, l := range a.Config.Languages {
		langPosts := content.ForLanguage(published, l.Code)
		dir := strings.Trim(l.Path, "/")

		rel := path.Join(dir, "index.html")
		if _, err := a.writeComponent(ctx, rel, a.indexPage(pages, l, langPosts, snap.external)); err != nil {
			return err
		}
		m.Files = append(m.Files, rel)

		rel = path.Join(dir, "feed.xml")
		if err := a.writeFile(rel, func(w io.Writer) error { return a.writeRSS(w, l, langPosts) }); err != nil {
			return err
		}
		m.Files = append(m.Files, rel)
	}

	if _, err := a.writeComponent(ctx, "404.html", views.NotFound(a.siteView())); err != nil {
		return err
	}
	if err := a.writeFile("sitemap.xml", func(w io.Writer) error { return a.writeSitemap(w, published) }); err != nil {
		return err
	}
	if err := a.writeFile("style.css", func(w io.Writer) error {
		_, err := w.Write(defaultStylesheet)
		return err
	}); err != nil {
		return err
	}
	m.Files = append(m.Files, "404.html", "sitemap.xml", "style.css")

	if err := copyDir(a.Config.PublicDir, out); err != nil {
		return fmt.Errorf("notionpub: copy public dir: %w", err)
	}

	for _, rel := range m.prune(prev, out) {
		a.Log.Info("removed stale output", "path", rel)
	}
	if err := m.write(out); err != nil {
		return fmt.Errorf("notionpub: write manifest: %w", err)
	}
	return nil
}

// renderer returns a block renderer whose unresolved mentions fall back to
// the home of lang.
func (a *App) renderer(pages *content.PageSet, lang Language) *blocks.Renderer {
	return blocks.New(pages, a.Assets,
		blocks.WithLinks(a.postPath),
		blocks.WithHome(lang.Path),
		blocks.WithCodeStyle(a.Config.CodeStyle))
}

func (a *App) postPage(pages *content.PageSet, p content.Post, body []content.Block, draft bool) templ.Component {
	lang := a.language(p.Language)
	r := a.renderer(pages, lang)
	site := a.siteView()
	title := content.PlainText(p.Title)
	postURL := a.postURL(p)
	return views.Post(views.PostPage{
		Site: site,
		Meta: views.PageMeta{
			Title:       title,
			Description: title,
			URL:         postURL,
			OGType:      "article",
			NoIndex:     draft,
			JSONLD:      views.BlogPostingJsonLD(site, title, postURL, p.Date, p.Tags),
		},
		Lang:  languageView(lang),
		Title: r.Text(p.Title),
		Date:  p.Date,
		Tags:  p.Tags,
		Body:  r.Body(body),
		Draft: draft,
	})
}

func (a *App) indexPage(pages *content.PageSet, l Language, posts []content.Post, external []content.ExternalPost) templ.Component {
	r := a.renderer(pages, l)
	site := a.siteView()
	pageURL := views.BuildURL(a.Config.URL, strings.Trim(l.Path, "/"))

	d := views.IndexPage{
		Site: site,
		Meta: views.PageMeta{
			Title:       l.Title,
			Description: a.Config.Description,
			URL:         pageURL,
			OGType:      "website",
			JSONLD:      views.WebsiteJsonLD(site, pageURL),
		},
		Lang:         languageView(l),
		ShowExternal: l.ShowExternal,
	}
	if l.Profile != "" {
		d.Profile = markdown.Markdown(l.Profile)
	}
	for _, p := range posts {
		link := views.PostLink{Title: r.Text(p.Title), Href: a.postPath(p), Date: p.Date}
		d.Posts = append(d.Posts, link)
		if a.Config.RecommendedTag != "" && p.HasTag(a.Config.RecommendedTag) {
			d.Recommended = append(d.Recommended, link)
		}
	}
	if l.ShowExternal {
		for _, e := range external {
			d.External = append(d.External, views.ExternalLink{
				Title: r.Text(e.Title),
				URL:   e.URL,
				Date:  e.CreatedTime,
			})
		}
	}
	return views.Index(d)
}

// writeComponent renders c into rel under the output dir and returns the
// sha256 of the written bytes.
func (a *App) writeComponent(ctx context.Context, rel string, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("notionpub: render %s: %w", rel, err)
	}
	sum := sha256.Sum256(buf.Bytes())
	if err := a.writeFile(rel, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	}); err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}

// writeFile creates rel under the output dir, including parent directories.
func (a *App) writeFile(rel string, fill func(io.Writer) error) error {
	full := filepath.Join(a.Config.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("notionpub: write %s: %w", rel, err)
	}
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		return fmt.Errorf("notionpub: write %s: %w", rel, err)
	}
	if err := os.WriteFile(full, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("notionpub: write %s: %w", rel, err)
	}
	return nil
}

// copyDir copies the tree at src over dst. A missing src is not an error.
func copyDir(src, dst string) error {
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
