package markdown

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func render(t *testing.T, src string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Render(&buf, src); err != nil {
		t.Fatalf("Render(%q): %v", src, err)
	}
	return buf.String()
}

func TestRenderInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"use `go test`", "<code>go test</code>"},
		{"~~gone~~", "<del>gone</del>"},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want substring %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderLinks(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		newTab bool
	}{
		{"[resume](https://github.com/me/resume)", `href="https://github.com/me/resume"`, true},
		{"[snake](https://example.com/a_b_c)", `href="https://example.com/a_b_c"`, true},
		{"[English](/en/)", `href="/en/"`, false},
	}
	for _, tt := range tests {
		got := render(t, tt.input)
		if !strings.Contains(got, tt.want) {
			t.Errorf("Render(%q) = %q, want substring %q", tt.input, got, tt.want)
		}
		if hasTarget := strings.Contains(got, `target="_blank"`); hasTarget != tt.newTab {
			t.Errorf("Render(%q) new tab = %v, want %v", tt.input, hasTarget, tt.newTab)
		}
	}
}

func TestRenderCodeBlock(t *testing.T) {
	got := render(t, "```go\nfmt.Println(1)\n```")
	if !strings.Contains(got, `<pre><code class="language-go">`) {
		t.Errorf("Render code block = %q", got)
	}
	if !strings.Contains(got, "fmt.Println(1)") {
		t.Errorf("Render code block missing content: %q", got)
	}
}

func TestRenderHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Title", "<h1>Title</h1>"},
		{"## Sub", "<h2>Sub</h2>"},
		{"### Third", "<h3>Third</h3>"},
	}
	for _, tt := range tests {
		if got := render(t, tt.input); !strings.Contains(got, tt.expected) {
			t.Errorf("Render(%q) = %q, want substring %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderLists(t *testing.T) {
	got := render(t, "- one\n- two")
	if !strings.Contains(got, "<ul>") || strings.Count(got, "<li>") != 2 {
		t.Errorf("unordered list = %q", got)
	}
	got = render(t, "1. first\n2. second\n\nafter")
	if !strings.Contains(got, "<ol>") || !strings.Contains(got, "<p>after</p>") {
		t.Errorf("ordered list = %q", got)
	}
}

func TestRenderHardWraps(t *testing.T) {
	got := render(t, "line one\nline two")
	if !strings.Contains(got, "<br>") {
		t.Errorf("Render = %q, want a line break", got)
	}
}

func TestRenderDropsRawHTML(t *testing.T) {
	got := render(t, "<script>alert(1)</script>")
	if strings.Contains(got, "<script>") {
		t.Errorf("Render = %q, raw HTML passed through", got)
	}
}

func TestMarkdownComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Markdown("hello *there*").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "<p>hello <em>there</em></p>\n"; got != want {
		t.Errorf("Markdown = %q, want %q", got, want)
	}
}
