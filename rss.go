package notionpub

import (
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/eringen/notionpub/content"
	"github.com/eringen/notionpub/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Category    []string `xml:"category,omitempty"`
	GUID        string   `xml:"guid"`
}

// writeRSS writes the RSS 2.0 feed of one language. posts are expected in
// display order.
func (a *App) writeRSS(w io.Writer, lang Language, posts []content.Post) error {
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if !p.Date.IsZero() {
			pubDate = p.Date.Format(time.RFC1123Z)
		}
		postURL := a.postURL(p)
		title := content.PlainText(p.Title)
		items = append(items, rssItem{
			Title:       title,
			Link:        postURL,
			Description: title,
			PubDate:     pubDate,
			Category:    p.Tags,
			GUID:        postURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       lang.Title,
			Link:        views.BuildURL(a.Config.URL, strings.Trim(lang.Path, "/")),
			Description: a.Config.Description,
			Language:    lang.Code,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}
