package views

import "github.com/a-h/templ"

// DraftLogin renders the password form of the drafts preview.
func DraftLogin(site SiteConfig, showError bool, csrfToken string) templ.Component {
	body := component(func(w *writer) {
		w.raw(`<article class="article"><h1 class="name">Drafts</h1>`)
		if showError {
			w.raw(`<p class="error">Wrong password.</p>`)
		}
		w.raw(`<form method="post" action="/drafts/login/"><input type="hidden" name="_csrf"`)
		w.attr("value", csrfToken)
		w.raw(`/><label>Password <input type="password" name="password" autocomplete="current-password" required/></label> <button type="submit">Sign in</button></form></article>`)
	})
	return Layout(site, PageMeta{Title: "Drafts | " + site.Name, NoIndex: true}, Language{Path: "/"}, body)
}

// DraftList renders every post of the last snapshot, drafts first.
func DraftList(site SiteConfig, items []DraftItem, csrfToken string) templ.Component {
	body := component(func(w *writer) {
		w.raw(`<article class="article"><h1 class="name">Drafts</h1>`)
		w.raw(`<form method="post" action="/drafts/logout/"><input type="hidden" name="_csrf"`)
		w.attr("value", csrfToken)
		w.raw(`/><button type="submit">Sign out</button></form>`)
		if len(items) == 0 {
			w.raw(`<p>No posts in the snapshot. Run a build first.</p>`)
		}
		w.raw(`<ol class="posts">`)
		for _, it := range items {
			w.raw(`<li class="post"><h3 class="post-title"><a`)
			w.href(it.Href)
			w.raw(">")
			w.text(it.Title)
			w.raw(`</a></h3><p class="post-date">`)
			w.text(it.Language)
			if date := FormatDate(it.Date); date != "" {
				w.raw(" · ")
				w.text(date)
			}
			if !it.Published {
				w.raw(` · <span class="draft">draft</span>`)
			}
			w.raw("</p></li>")
		}
		w.raw("</ol></article>")
	})
	return Layout(site, PageMeta{Title: "Drafts | " + site.Name, NoIndex: true}, Language{Path: "/"}, body)
}
