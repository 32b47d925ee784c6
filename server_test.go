package notionpub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/notionpub/content"
)

func newPreviewApp(t *testing.T) *App {
	t.Helper()
	cfg := testConfig(t)
	cfg.PreviewPassword = "letmein"
	cfg.SessionSecret = "0123456789abcdef0123456789abcdef"
	draft := testPost("d", "wip", "2023-03-01")
	draft.Published = false
	src := &stubSource{t: t, posts: []content.Post{testPost("a", "alpha", "2023-01-01"), draft}}
	a := New(cfg, WithLogger(discardLogger()), WithSource(src), WithMetrics(prom.NewRegistry()))
	t.Cleanup(func() { _ = a.Close() })

	if _, err := a.Build(context.Background(), BuildOptions{}); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := a.prepareServer(); err != nil {
		t.Fatalf("prepareServer: %v", err)
	}
	t.Cleanup(a.loginLimiter.Stop)
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestServeGeneratedSite(t *testing.T) {
	a := newPreviewApp(t)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/en/", http.StatusOK, `href="/en/alpha/"`},
		{"/en/alpha/", http.StatusOK, "body of a"},
		{"/sitemap.xml", http.StatusOK, "https://example.com/en/alpha/"},
		{"/nope/", http.StatusNotFound, "Page not found"},
		{"/en/wip/", http.StatusNotFound, "Page not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(a, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body misses %q", tt.wantBody)
			}
		})
	}
}

func TestServeAddsTrailingSlash(t *testing.T) {
	a := newPreviewApp(t)
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/en", nil))
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMovedPermanently)
	}
	if got := rec.Header().Get("Location"); got != "/en/" {
		t.Errorf("Location = %q, want %q", got, "/en/")
	}
}

func TestServeMetrics(t *testing.T) {
	a := newPreviewApp(t)
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `notionpub_build_outcomes_total{outcome="success"} 1`) {
		t.Errorf("metrics miss the build outcome:\n%s", rec.Body.String())
	}
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func login(t *testing.T, a *App, password string) *httptest.ResponseRecorder {
	t.Helper()
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/drafts/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `action="/drafts/login/"`) {
		t.Fatalf("GET /drafts/ = %d, want login form", rec.Code)
	}
	token := cookieValue(rec, "_csrf")
	if token == "" {
		t.Fatal("no csrf cookie")
	}

	form := url.Values{"_csrf": {token}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/drafts/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: token})
	return serve(a, req)
}

func TestDraftsLogin(t *testing.T) {
	a := newPreviewApp(t)

	rec := login(t, a, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), "Wrong password.") {
		t.Errorf("wrong password body misses the error")
	}

	rec = login(t, a, "letmein")
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	sess := cookieValue(rec, sessionName)
	if sess == "" {
		t.Fatal("no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/drafts/", nil)
	req.AddCookie(&http.Cookie{Name: sessionName, Value: sess})
	rec = serve(a, req)
	body := rec.Body.String()
	if !strings.Contains(body, `href="/drafts/d/"`) || !strings.Contains(body, `href="/drafts/a/"`) {
		t.Fatalf("draft list misses posts:\n%s", body)
	}
	if strings.Index(body, `href="/drafts/d/"`) > strings.Index(body, `href="/drafts/a/"`) {
		t.Errorf("draft is not listed first")
	}

	req = httptest.NewRequest(http.MethodGet, "/drafts/d/", nil)
	req.AddCookie(&http.Cookie{Name: sessionName, Value: sess})
	rec = serve(a, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("draft page status = %d, want %d", rec.Code, http.StatusOK)
	}
	for _, want := range []string{"Draft preview", "body of d", `content="noindex, nofollow"`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("draft page misses %q", want)
		}
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want %q", got, "no-store")
	}
}

func TestDraftPageRequiresLogin(t *testing.T) {
	a := newPreviewApp(t)
	rec := serve(a, httptest.NewRequest(http.MethodGet, "/drafts/d/", nil))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/drafts/" {
		t.Errorf("Location = %q, want %q", got, "/drafts/")
	}
}

func TestDraftsLoginRejectsMissingCSRF(t *testing.T) {
	a := newPreviewApp(t)
	form := url.Values{"password": {"letmein"}}
	req := httptest.NewRequest(http.MethodPost, "/drafts/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(a, req)
	if rec.Code == http.StatusSeeOther {
		t.Errorf("login without csrf token succeeded")
	}
}
