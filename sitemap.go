package notionpub

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/eringen/notionpub/content"
	"github.com/eringen/notionpub/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeSitemap lists every language index and every published post.
func (a *App) writeSitemap(w io.Writer, posts []content.Post) error {
	base := a.Config.URL
	var urls []sitemapURL
	for _, l := range a.Config.Languages {
		urls = append(urls, sitemapURL{Loc: views.BuildURL(base, strings.Trim(l.Path, "/"))})
	}
	for _, p := range posts {
		u := sitemapURL{Loc: a.postURL(p)}
		if !p.EditedTime.IsZero() {
			u.LastMod = p.EditedTime.Format("2006-01-02")
		} else if !p.Date.IsZero() {
			u.LastMod = p.Date.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemap)
}
