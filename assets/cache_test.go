package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/eringen/notionpub/content"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(t.TempDir(), opts...)
}

func TestEnsureCachedWritesOnce(t *testing.T) {
	body := jpegBytes(t, 4, 3)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(body)
	}))
	defer srv.Close()

	c := newTestCache(t)
	ctx := context.Background()
	c.EnsureCached(ctx, srv.URL+"/a.jpg", "block1")
	c.EnsureCached(ctx, srv.URL+"/a.jpg", "block1")

	st := c.Stats()
	if st.Written != 1 || st.Skipped != 1 {
		t.Errorf("Stats = %+v, want 1 written and 1 skipped", st)
	}
	if _, err := os.Stat(c.Path("block1")); err != nil {
		t.Fatalf("cached file: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("downloads = %d, want 2", hits.Load())
	}
}

func TestEnsureCachedStoresPNG(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(jpegBytes(t, 40, 20))
	}))
	defer srv.Close()

	c := newTestCache(t, WithMaxWidth(10))
	c.EnsureCached(context.Background(), srv.URL, "img")

	f, err := os.Open(c.Path("img"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 5 {
		t.Errorf("size = %dx%d, want 10x5", b.Dx(), b.Dy())
	}
}

func TestEnsureCachedKeepsUndecodableBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<svg/>")
	}))
	defer srv.Close()

	c := newTestCache(t)
	c.EnsureCached(context.Background(), srv.URL, "svg")

	got, err := os.ReadFile(c.Path("svg"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "<svg/>" {
		t.Errorf("content = %q, want %q", got, "<svg/>")
	}
}

func TestEnsureCachedFailureLeavesNoFile(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	oversized := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, maxDownloadSize+1024))
	}))
	defer oversized.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"non-2xx", notFound.URL + "/missing.png"},
		{"connection refused", closed.URL + "/x.png"},
		{"bad url", "http://%zz"},
		{"too large", oversized.URL + "/huge.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(t)
			c.EnsureCached(context.Background(), tt.url, "gone")

			if _, err := os.Stat(c.Path("gone")); !os.IsNotExist(err) {
				t.Errorf("Stat = %v, want not exist", err)
			}
			if st := c.Stats(); st.Failed != 1 || st.Written != 0 {
				t.Errorf("Stats = %+v, want 1 failed", st)
			}
			entries, _ := os.ReadDir(c.Dir())
			if len(entries) != 0 {
				t.Errorf("asset dir has %d entries, want 0", len(entries))
			}
		})
	}
}

func TestEnsureAllIncludesToggleChildren(t *testing.T) {
	body := jpegBytes(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	c := newTestCache(t)
	blocks := []content.Block{
		{ID: "top", Type: content.TypeImage, Value: content.Image{URL: srv.URL + "/1"}},
		{ID: "t", Type: content.TypeToggle, Value: content.Toggle{Children: []content.Block{
			{ID: "nested", Type: content.TypeImage, Value: content.Image{URL: srv.URL + "/2"}},
		}}},
		{ID: "p", Type: content.TypeParagraph, Value: content.Paragraph{}},
	}
	c.EnsureAll(context.Background(), blocks)

	for _, id := range []string{"top", "nested"} {
		if _, err := os.Stat(c.Path(id)); err != nil {
			t.Errorf("Stat(%s): %v", id, err)
		}
	}
}

func TestURL(t *testing.T) {
	c := New("/tmp/x")
	if got, want := c.URL("abc"), "/blogImages/abc.png"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}
