package notionpub

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/eringen/notionpub/content"
	"github.com/eringen/notionpub/views"
)

func (a *App) handleDrafts(c echo.Context) error {
	if !IsPreviewer(c) {
		return Render(c, views.DraftLogin(a.siteView(), false, CsrfToken(c)))
	}
	posts, err := a.Cache.ListAll()
	if err != nil {
		return err
	}
	return Render(c, views.DraftList(a.siteView(), draftItems(posts), CsrfToken(c)))
}

// draftItems lists drafts before published posts, each group keeping the
// snapshot's date order.
func draftItems(posts []content.Post) []views.DraftItem {
	items := make([]views.DraftItem, 0, len(posts))
	for _, p := range posts {
		title := content.PlainText(p.Title)
		if title == "" {
			title = "(untitled)"
		}
		items = append(items, views.DraftItem{
			Title:     title,
			Href:      "/drafts/" + p.ID + "/",
			Language:  p.Language,
			Date:      p.Date,
			Published: p.Published,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return !items[i].Published && items[j].Published
	})
	return items
}

func (a *App) handleDraft(c echo.Context) error {
	if !IsPreviewer(c) {
		return c.Redirect(http.StatusSeeOther, "/drafts/")
	}
	sp, err := a.Store.GetPost(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	pages, err := a.Cache.PageSet()
	if err != nil {
		return err
	}
	return Render(c, a.postPage(pages, sp.Post, sp.Blocks, true))
}

func (a *App) handleDraftsLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.PreviewPassword)) == 1 {
		if err := setPreviewSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/drafts/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, views.DraftLogin(a.siteView(), true, CsrfToken(c)))
}

func handleDraftsLogout(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/drafts/")
}
