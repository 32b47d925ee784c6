package notionpub

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a notionpub site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD
	OGImage     string `yaml:"og_image"`    // og:image, absolute or site-relative

	NotionToken        string `yaml:"-"`                    // NOTION_TOKEN
	DatabaseID         string `yaml:"database_id"`          // NOTION_DATABASE_ID
	ExternalDatabaseID string `yaml:"external_database_id"` // NOTION_EXTERNAL_POSTS_DATABASE_ID, optional

	OutputDir     string `yaml:"output_dir"`      // Generated site (default "dist")
	PublicDir     string `yaml:"public_dir"`      // Copied over the output (default "public")
	AssetDir      string `yaml:"asset_dir"`       // Image cache, under PublicDir (default "blogImages")
	ImageMaxWidth int    `yaml:"image_max_width"` // Cached images are scaled down to this width
	CodeStyle     string `yaml:"code_style"`      // chroma style (default "nord")
	Workers       int    `yaml:"workers"`         // Concurrent post builds (default 4)

	// RecommendedTag lists posts carrying this tag in a section of their
	// language's index. Empty disables the section.
	RecommendedTag string     `yaml:"recommended_tag"`
	Languages      []Language `yaml:"languages"`

	DatabasePath string `yaml:"database_path"` // SQLite snapshot (default "data/notionpub.db")

	Addr            string        `yaml:"addr"`           // Preview listen address (default ":3000")
	PreviewPassword string        `yaml:"-"`              // PREVIEW_PASSWORD, enables /drafts/
	SessionSecret   string        `yaml:"-"`              // SESSION_SECRET
	CookieSecure    bool          `yaml:"cookie_secure"`  // Set true for HTTPS
	PostCacheTTL    time.Duration `yaml:"post_cache_ttl"` // Drafts cache TTL (default 5m)
	RebuildEvery    time.Duration `yaml:"rebuild_every"`  // Scheduled rebuilds in serve, 0 disables
}

// Language is one language section of the site.
type Language struct {
	Code         string `yaml:"code"`
	Path         string `yaml:"path"`
	Title        string `yaml:"title"`
	SwitchLabel  string `yaml:"switch_label"`
	SwitchPath   string `yaml:"switch_path"`
	Profile      string `yaml:"profile"` // Markdown
	ShowExternal bool   `yaml:"show_external"`
}

// DefaultLanguages is the layout used when the config names none.
func DefaultLanguages() []Language {
	return []Language{
		{Code: "ja", Path: "/", SwitchLabel: "English Site is here 🇺🇸", SwitchPath: "/en/", ShowExternal: true},
		{Code: "en", Path: "/en/", SwitchLabel: "日本語のサイトはこちら 🇯🇵", SwitchPath: "/"},
	}
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.OutputDir == "" {
		c.OutputDir = "dist"
	}
	if c.PublicDir == "" {
		c.PublicDir = "public"
	}
	if c.AssetDir == "" {
		c.AssetDir = "blogImages"
	}
	if c.ImageMaxWidth == 0 {
		c.ImageMaxWidth = 1600
	}
	if c.CodeStyle == "" {
		c.CodeStyle = "nord"
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/notionpub.db"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if len(c.Languages) == 0 {
		c.Languages = DefaultLanguages()
	}
	for i := range c.Languages {
		l := &c.Languages[i]
		l.Path = normalizePath(l.Path)
		if l.SwitchPath != "" {
			l.SwitchPath = normalizePath(l.SwitchPath)
		}
		if l.Title == "" {
			l.Title = c.Name
		}
	}
}

// normalizePath returns p with a leading and trailing slash.
func normalizePath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// Validate reports configuration that makes a build impossible.
func (c *SiteConfig) Validate(offline bool) error {
	var errs []error
	if !offline {
		if c.NotionToken == "" {
			errs = append(errs, errors.New("NOTION_TOKEN is required"))
		}
		if c.DatabaseID == "" {
			errs = append(errs, errors.New("NOTION_DATABASE_ID is required"))
		}
	}
	seen := make(map[string]bool)
	for _, l := range c.Languages {
		if l.Code == "" {
			errs = append(errs, fmt.Errorf("language at %q has no code", l.Path))
		}
		if seen[l.Path] {
			errs = append(errs, fmt.Errorf("language path %q used twice", l.Path))
		}
		seen[l.Path] = true
	}
	if c.PreviewPassword != "" && c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required when PREVIEW_PASSWORD is set"))
	}
	return errors.Join(errs...)
}

// DraftsEnabled reports whether the preview server serves /drafts/.
func (c *SiteConfig) DraftsEnabled() bool {
	return c.PreviewPassword != "" && c.SessionSecret != ""
}

// LoadConfig reads .env files, then the YAML file at path if it exists, then
// environment overrides, and applies defaults. ${VAR} references in the YAML
// are expanded.
func LoadConfig(path string) (SiteConfig, error) {
	loadEnvFiles(".env", ".env.local")

	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	cfg.setDefaults()
	return cfg, nil
}

// loadEnvFiles loads each existing file. Variables already in the process
// environment win.
func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		_ = godotenv.Load(p)
	}
}

func applyEnv(cfg *SiteConfig) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.NotionToken, "NOTION_TOKEN")
	set(&cfg.DatabaseID, "NOTION_DATABASE_ID")
	set(&cfg.ExternalDatabaseID, "NOTION_EXTERNAL_POSTS_DATABASE_ID")
	set(&cfg.URL, "SITE_URL")
	set(&cfg.PreviewPassword, "PREVIEW_PASSWORD")
	set(&cfg.SessionSecret, "SESSION_SECRET")
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
