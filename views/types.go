package views

import (
	"time"

	"github.com/a-h/templ"
)

// SiteConfig holds the site-wide settings every page needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	OGImage     string // absolute or site-relative image for og:image
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	NoIndex     bool
	JSONLD      string
}

// Language describes one language section of the site.
type Language struct {
	Code        string
	Path        string // "/" or "/en/"
	Title       string
	SwitchLabel string
	SwitchPath  string
}

// PostLink is one entry of an index list.
type PostLink struct {
	Title templ.Component
	Href  string
	Date  time.Time
}

// ExternalLink is an article published on another site.
type ExternalLink struct {
	Title templ.Component
	URL   string
	Date  time.Time
}

// IndexPage is the data of a language index.
type IndexPage struct {
	Site         SiteConfig
	Meta         PageMeta
	Lang         Language
	Profile      templ.Component // nil hides the profile section
	Posts        []PostLink
	Recommended  []PostLink
	External     []ExternalLink
	ShowExternal bool
}

// PostPage is the data of a single post.
type PostPage struct {
	Site  SiteConfig
	Meta  PageMeta
	Lang  Language
	Title templ.Component
	Date  time.Time
	Tags  []string
	Body  templ.Component
	Draft bool
}

// DraftItem is one row of the drafts list.
type DraftItem struct {
	Title     string
	Href      string
	Language  string
	Date      time.Time
	Published bool
}
