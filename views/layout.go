package views

import (
	"strings"

	"github.com/a-h/templ"
)

// Layout wraps body in the site's HTML document.
func Layout(site SiteConfig, meta PageMeta, lang Language, body templ.Component) templ.Component {
	return component(func(w *writer) {
		code := lang.Code
		if code == "" {
			code = "en"
		}
		w.raw(`<!DOCTYPE html><html`)
		w.attr("lang", code)
		w.raw(`><head><meta charset="utf-8"/>`)
		w.raw(`<meta name="viewport" content="width=device-width,initial-scale=1.0"/>`)
		w.raw("<title>")
		w.text(meta.Title)
		w.raw("</title>")
		head(w, site, meta, lang)
		w.raw(`</head><body><main class="container">`)
		w.render(body)
		w.raw("</main></body></html>")
	})
}

func head(w *writer, site SiteConfig, meta PageMeta, lang Language) {
	desc := meta.Description
	if desc == "" {
		desc = site.Description
	}
	w.raw(`<meta name="description"`)
	w.attr("content", desc)
	w.raw("/>")
	if meta.NoIndex {
		w.raw(`<meta name="robots" content="noindex, nofollow"/>`)
	}
	if meta.URL != "" {
		w.raw(`<link rel="canonical"`)
		w.href(meta.URL)
		w.raw("/>")
	}

	ogType := meta.OGType
	if ogType == "" {
		ogType = "website"
	}
	og := [][2]string{
		{"og:url", meta.URL},
		{"og:title", meta.Title},
		{"og:site_name", site.Name},
		{"og:description", desc},
		{"og:type", ogType},
	}
	if site.OGImage != "" {
		img := site.OGImage
		if strings.HasPrefix(img, "/") {
			img = strings.TrimSuffix(site.URL, "/") + img
		}
		og = append(og,
			[2]string{"og:image", img},
			[2]string{"og:image:width", "1200"},
			[2]string{"og:image:height", "630"},
		)
	}
	for _, kv := range og {
		w.raw(`<meta`)
		w.attr("property", kv[0])
		w.attr("content", kv[1])
		w.raw("/>")
	}

	w.raw(`<link rel="icon" href="/favicon.ico"/>`)
	w.raw(`<link rel="stylesheet" href="/style.css"/>`)
	w.raw(`<link rel="alternate" type="application/rss+xml"`)
	w.attr("title", site.Name)
	w.href(feedPath(lang))
	w.raw("/>")
	if meta.JSONLD != "" {
		// json.Marshal escapes <, > and &, so the payload cannot close the tag.
		w.raw(`<script type="application/ld+json">`, meta.JSONLD, `</script>`)
	}
}

func feedPath(lang Language) string {
	p := lang.Path
	if p == "" {
		p = "/"
	}
	return p + "feed.xml"
}
