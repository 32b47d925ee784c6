package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	created, err := Write(dir, Data{SiteName: "My Blog", URL: "https://blog.example"}, false)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %v, want 2 files", created)
	}

	cfg, err := os.ReadFile(filepath.Join(dir, "notionpub.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"name: My Blog", "url: https://blog.example", "database_id: ${NOTION_DATABASE_ID}"} {
		if !strings.Contains(string(cfg), want) {
			t.Errorf("notionpub.yaml misses %q", want)
		}
	}
	env, err := os.ReadFile(filepath.Join(dir, ".env.example"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(env), "NOTION_TOKEN=") {
		t.Errorf(".env.example misses NOTION_TOKEN")
	}
}

func TestWriteRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	if _, err := Write(dir, Data{SiteName: "A"}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := Write(dir, Data{SiteName: "B"}, false); err == nil {
		t.Fatalf("second Write succeeded, want error")
	}
	if _, err := Write(dir, Data{SiteName: "B"}, true); err != nil {
		t.Fatalf("forced Write: %v", err)
	}
	cfg, err := os.ReadFile(filepath.Join(dir, "notionpub.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cfg), "name: B") {
		t.Errorf("forced Write did not overwrite")
	}
}

func TestToTitle(t *testing.T) {
	tests := []struct{ in, want string }{
		{"my-blog", "My Blog"},
		{"myblog", "Myblog"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToTitle(tt.in); got != tt.want {
			t.Errorf("ToTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
