package views

import "github.com/a-h/templ"

// Index renders a language's home page.
func Index(d IndexPage) templ.Component {
	body := component(func(w *writer) {
		w.raw(`<header class="header"><h1>`)
		w.text(d.Lang.Title)
		w.raw("</h1>")
		if d.Lang.SwitchPath != "" {
			w.raw(`<div class="switch"><a`)
			w.href(d.Lang.SwitchPath)
			w.raw(`><span class="page-link">`)
			w.text(d.Lang.SwitchLabel)
			w.raw("</span></a></div>")
		}
		w.raw("</header>")

		if d.Profile != nil {
			w.raw(`<section class="section"><h2 class="heading">Profile</h2>`)
			w.render(d.Profile)
			w.raw("</section>")
		}

		if len(d.Recommended) > 0 {
			w.raw(`<section class="section"><h2 class="heading">Recommended</h2>`)
			postList(w, d.Recommended)
			w.raw("</section>")
		}

		w.raw(`<section class="section"><h2 class="heading">POSTS</h2>`)
		if d.ShowExternal && len(d.External) > 0 {
			w.raw(`<div class="external"><details><summary><span class="summary"> External POSTS </span></summary><ol class="posts">`)
			for _, e := range d.External {
				w.raw(`<li class="post"><h3 class="post-title"><a`)
				w.href(e.URL)
				w.raw(` target="_blank" rel="noopener">`)
				w.render(e.Title)
				w.raw(`</a></h3><p class="post-date">`)
				w.text(FormatDate(e.Date))
				w.raw(`</p><a`)
				w.href(e.URL)
				w.raw(` target="_blank" rel="noopener">`)
				w.text(Host(e.URL))
				w.raw(" →</a></li>")
			}
			w.raw("</ol></details></div>")
		}
		postList(w, d.Posts)
		w.raw("</section>")
	})
	return Layout(d.Site, d.Meta, d.Lang, body)
}

func postList(w *writer, posts []PostLink) {
	w.raw(`<ol class="posts">`)
	for _, p := range posts {
		w.raw(`<li class="post"><h3 class="post-title"><a`)
		w.href(p.Href)
		w.raw(">")
		w.render(p.Title)
		w.raw(`</a></h3><p class="post-date">`)
		w.text(FormatDate(p.Date))
		w.raw(`</p><a`)
		w.href(p.Href)
		w.raw("> Read post →</a></li>")
	}
	w.raw("</ol>")
}

// Post renders a single post page.
func Post(d PostPage) templ.Component {
	body := component(func(w *writer) {
		w.raw(`<article class="article">`)
		if d.Draft {
			w.raw(`<p class="draft-banner">Draft preview</p>`)
		}
		w.raw(`<h1 class="name">`)
		w.render(d.Title)
		w.raw("</h1>")
		if date := FormatDate(d.Date); date != "" {
			w.raw(`<p class="post-date">`)
			w.text(date)
			w.raw("</p>")
		}
		if len(d.Tags) > 0 {
			w.raw(`<ul class="tags">`)
			for _, t := range d.Tags {
				w.raw("<li>")
				w.text(t)
				w.raw("</li>")
			}
			w.raw("</ul>")
		}
		w.raw("<section>")
		w.render(d.Body)
		home := d.Lang.Path
		if home == "" {
			home = "/"
		}
		w.raw(`<a class="back"`)
		w.href(home)
		w.raw(">← Go home</a></section></article>")
	})
	return Layout(d.Site, d.Meta, d.Lang, body)
}

// NotFound renders the 404 page.
func NotFound(site SiteConfig) templ.Component {
	body := component(func(w *writer) {
		w.raw(`<article class="article"><h1 class="name">Page not found</h1><p>The page you are looking for does not exist.</p><a class="back" href="/">← Go home</a></article>`)
	})
	return Layout(site, PageMeta{Title: "Not found | " + site.Name, NoIndex: true}, Language{Path: "/"}, body)
}

// ServerError renders the 500 page.
func ServerError(site SiteConfig) templ.Component {
	body := component(func(w *writer) {
		w.raw(`<article class="article"><h1 class="name">Something went wrong</h1><p>Please try again later.</p><a class="back" href="/">← Go home</a></article>`)
	})
	return Layout(site, PageMeta{Title: "Error | " + site.Name, NoIndex: true}, Language{Path: "/"}, body)
}
