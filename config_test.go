package notionpub

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()

	if cfg.OutputDir != "dist" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "dist")
	}
	if cfg.CodeStyle != "nord" {
		t.Errorf("CodeStyle = %q, want %q", cfg.CodeStyle, "nord")
	}
	if cfg.PostCacheTTL != 5*time.Minute {
		t.Errorf("PostCacheTTL = %v, want %v", cfg.PostCacheTTL, 5*time.Minute)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0].Path != "/" || cfg.Languages[1].Path != "/en/" {
		t.Errorf("Languages = %+v, want ja at / and en at /en/", cfg.Languages)
	}
	if cfg.Languages[1].Title != "Blog" {
		t.Errorf("Title = %q, want site name", cfg.Languages[1].Title)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"en", "/en/"},
		{"/en", "/en/"},
		{"en/", "/en/"},
		{"/a/b/", "/a/b/"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	base := SiteConfig{NotionToken: "t", DatabaseID: "db"}
	base.setDefaults()

	tests := []struct {
		name    string
		mutate  func(*SiteConfig)
		offline bool
		wantErr string
	}{
		{"ok", func(*SiteConfig) {}, false, ""},
		{"missing token", func(c *SiteConfig) { c.NotionToken = "" }, false, "NOTION_TOKEN"},
		{"offline without token", func(c *SiteConfig) { c.NotionToken = "" }, true, ""},
		{"missing database", func(c *SiteConfig) { c.DatabaseID = "" }, false, "NOTION_DATABASE_ID"},
		{"password without secret", func(c *SiteConfig) { c.PreviewPassword = "x" }, false, "SESSION_SECRET"},
		{"duplicate path", func(c *SiteConfig) {
			c.Languages = []Language{{Code: "en", Path: "/"}, {Code: "ja", Path: "/"}}
		}, false, "used twice"},
		{"language without code", func(c *SiteConfig) {
			c.Languages = []Language{{Path: "/"}}
		}, false, "no code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Languages = append([]Language(nil), base.Languages...)
			tt.mutate(&cfg)
			err := cfg.Validate(tt.offline)
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Validate = %v, want nil", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("NOTION_TOKEN", "from-env")
	t.Setenv("BLOG_NAME", "Expanded")
	t.Setenv("NOTION_DATABASE_ID", "")
	path := filepath.Join(t.TempDir(), "notionpub.yaml")
	yaml := `name: ${BLOG_NAME}
url: https://example.com
database_id: db-yaml
workers: 2
post_cache_ttl: 30s
languages:
  - code: en
    path: en
    profile: "I write **Go**."
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Expanded" {
		t.Errorf("Name = %q, want %q", cfg.Name, "Expanded")
	}
	if cfg.NotionToken != "from-env" {
		t.Errorf("NotionToken = %q, want %q", cfg.NotionToken, "from-env")
	}
	if cfg.DatabaseID != "db-yaml" {
		t.Errorf("DatabaseID = %q, want %q", cfg.DatabaseID, "db-yaml")
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.PostCacheTTL != 30*time.Second {
		t.Errorf("PostCacheTTL = %v, want 30s", cfg.PostCacheTTL)
	}
	if len(cfg.Languages) != 1 || cfg.Languages[0].Path != "/en/" || cfg.Languages[0].Title != "Expanded" {
		t.Errorf("Languages = %+v", cfg.Languages)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":3000")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("name: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Errorf("LoadConfig with bad YAML succeeded, want error")
	}
}

func TestDraftsEnabled(t *testing.T) {
	cfg := SiteConfig{PreviewPassword: "p"}
	if cfg.DraftsEnabled() {
		t.Errorf("DraftsEnabled without secret = true, want false")
	}
	cfg.SessionSecret = "s"
	if !cfg.DraftsEnabled() {
		t.Errorf("DraftsEnabled = false, want true")
	}
}
