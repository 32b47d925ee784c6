package notionpub

import (
	"net/url"

	"github.com/eringen/notionpub/content"
	"github.com/eringen/notionpub/views"
)

// language returns the configured language of code. Posts in a language the
// site does not list live under the first language.
func (a *App) language(code string) Language {
	for _, l := range a.Config.Languages {
		if l.Code == code {
			return l
		}
	}
	return a.Config.Languages[0]
}

// postPath is the site-relative path of a post page.
func (a *App) postPath(p content.Post) string {
	return a.language(p.Language).Path + url.PathEscape(p.Slug) + "/"
}

// postURL is the absolute URL of a post page.
func (a *App) postURL(p content.Post) string {
	return views.BuildURL(a.Config.URL, a.postPath(p))
}

func (a *App) siteView() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		OGImage:     a.Config.OGImage,
	}
}

func languageView(l Language) views.Language {
	return views.Language{
		Code:        l.Code,
		Path:        l.Path,
		Title:       l.Title,
		SwitchLabel: l.SwitchLabel,
		SwitchPath:  l.SwitchPath,
	}
}
