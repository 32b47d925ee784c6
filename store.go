package notionpub

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/notionpub/content"
)

// StoredPost is a snapshot row: the post and, when it was fetched, its body.
type StoredPost struct {
	content.Post
	Blocks []content.Block
}

// Store wraps the SQLite snapshot of the last build.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while a scheduled build writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		_ = db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    language TEXT NOT NULL,
    tags TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 0,
    created_time TEXT NOT NULL,
    edited_time TEXT NOT NULL,
    blocks TEXT
);
CREATE INDEX IF NOT EXISTS posts_slug ON posts (language, slug);
CREATE TABLE IF NOT EXISTS external_posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    url TEXT NOT NULL,
    created_time TEXT NOT NULL
);
`)
	return err
}

// SaveSnapshot replaces the stored posts and external posts.
func (s *Store) SaveSnapshot(posts []StoredPost, external []content.ExternalPost) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM posts`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM external_posts`); err != nil {
		return err
	}
	for _, p := range posts {
		title, err := json.Marshal(p.Title)
		if err != nil {
			return fmt.Errorf("encode title of %s: %w", p.ID, err)
		}
		var blocks sql.NullString
		if p.Blocks != nil {
			raw, err := json.Marshal(p.Blocks)
			if err != nil {
				return fmt.Errorf("encode blocks of %s: %w", p.ID, err)
			}
			blocks = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := tx.Exec(`INSERT INTO posts (id, slug, title, date, language, tags, published, created_time, edited_time, blocks) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Slug, string(title), formatTime(p.Date), p.Language, joinTags(p.Tags), boolInt(p.Published),
			formatTime(p.CreatedTime), formatTime(p.EditedTime), blocks); err != nil {
			return fmt.Errorf("insert post %s: %w", p.ID, err)
		}
	}
	for _, e := range external {
		title, err := json.Marshal(e.Title)
		if err != nil {
			return fmt.Errorf("encode title of %s: %w", e.ID, err)
		}
		if _, err := tx.Exec(`INSERT INTO external_posts (id, title, url, created_time) VALUES (?, ?, ?, ?)`,
			e.ID, string(title), e.URL, formatTime(e.CreatedTime)); err != nil {
			return fmt.Errorf("insert external post %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

const postColumns = `id, slug, title, date, language, tags, published, created_time, edited_time`

// ListPosts returns published, slugged posts ordered by date descending.
// A non-empty lang filters by language.
func (s *Store) ListPosts(lang string) ([]content.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE published = 1 AND slug != ''`
	var args []any
	if lang != "" {
		q += ` AND language = ?`
		args = append(args, lang)
	}
	return s.queryPosts(q+` ORDER BY date = '', date DESC`, args...)
}

// ListAllPosts returns every post (published and drafts) ordered by date descending.
func (s *Store) ListAllPosts() ([]content.Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date = '', date DESC`)
}

func (s *Store) queryPosts(q string, args ...any) ([]content.Post, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner, extra ...any) (content.Post, error) {
	var p content.Post
	var title, date, tags, created, edited string
	var published int
	dest := append([]any{&p.ID, &p.Slug, &title, &date, &p.Language, &tags, &published, &created, &edited}, extra...)
	if err := row.Scan(dest...); err != nil {
		return content.Post{}, err
	}
	if err := json.Unmarshal([]byte(title), &p.Title); err != nil {
		return content.Post{}, fmt.Errorf("decode title of %s: %w", p.ID, err)
	}
	p.Date = parseTime(date)
	p.Tags = ParseTags(tags)
	p.Published = published == 1
	p.CreatedTime = parseTime(created)
	p.EditedTime = parseTime(edited)
	return p, nil
}

// GetPost returns a post and its stored body by Notion page id.
func (s *Store) GetPost(id string) (StoredPost, error) {
	var blocks sql.NullString
	row := s.db.QueryRow(`SELECT `+postColumns+`, blocks FROM posts WHERE id = ?`, id)
	p, err := scanPost(row, &blocks)
	if err != nil {
		return StoredPost{}, err
	}
	sp := StoredPost{Post: p}
	if blocks.Valid {
		if err := json.Unmarshal([]byte(blocks.String), &sp.Blocks); err != nil {
			return StoredPost{}, fmt.Errorf("decode blocks of %s: %w", id, err)
		}
	}
	return sp, nil
}

// ListExternalPosts returns the stored external posts, newest first.
func (s *Store) ListExternalPosts() ([]content.ExternalPost, error) {
	rows, err := s.db.Query(`SELECT id, title, url, created_time FROM external_posts ORDER BY created_time DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []content.ExternalPost
	for rows.Next() {
		var e content.ExternalPost
		var title, created string
		if err := rows.Scan(&e.ID, &title, &e.URL, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(title), &e.Title); err != nil {
			return nil, fmt.Errorf("decode title of %s: %w", e.ID, err)
		}
		e.CreatedTime = parseTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
