// Converts Notion API objects into the site's content model.

package notion

import (
	"errors"
	"fmt"
	"time"

	"github.com/eringen/notionpub/content"
)

// Database property names read by the blog.
const (
	PropName      = "Name"
	PropSlug      = "Slug"
	PropPublished = "Published"
	PropDate      = "Date"
	PropLanguage  = "Language"
	PropTags      = "Tags"
	PropURL       = "URL"
)

// ErrMissingProperty is wrapped by conversion errors for records that lack a
// property the site cannot do without.
var ErrMissingProperty = errors.New("missing property")

// ToPost converts a row of the posts database. Name, Slug and Published must
// exist; Language must be set on published rows.
func ToPost(p *Page) (content.Post, error) {
	name, ok := p.Properties[PropName]
	if !ok {
		return content.Post{}, fmt.Errorf("page %s: %w %q", p.ID, ErrMissingProperty, PropName)
	}
	slug, ok := p.Properties[PropSlug]
	if !ok {
		return content.Post{}, fmt.Errorf("page %s: %w %q", p.ID, ErrMissingProperty, PropSlug)
	}
	published, ok := p.Properties[PropPublished]
	if !ok || published.Checkbox == nil {
		return content.Post{}, fmt.Errorf("page %s: %w %q", p.ID, ErrMissingProperty, PropPublished)
	}

	post := content.Post{
		ID:          p.ID,
		Title:       ToRichText(name.Title),
		Published:   *published.Checkbox,
		CreatedTime: p.CreatedTime,
		EditedTime:  p.LastEditedTime,
	}
	if len(slug.RichText) > 0 {
		post.Slug = slug.RichText[0].PlainText
	}
	if d, ok := p.Properties[PropDate]; ok && d.Date != nil {
		post.Date = parseDate(d.Date.Start)
	}
	if lang, ok := p.Properties[PropLanguage]; ok && lang.Select != nil {
		post.Language = lang.Select.Name
	} else if post.Published {
		return content.Post{}, fmt.Errorf("page %s: %w %q", p.ID, ErrMissingProperty, PropLanguage)
	}
	if tags, ok := p.Properties[PropTags]; ok {
		for _, t := range tags.MultiSelect {
			post.Tags = append(post.Tags, t.Name)
		}
	}
	return post, nil
}

// ToExternalPost converts a row of the external posts database.
func ToExternalPost(p *Page) content.ExternalPost {
	ext := content.ExternalPost{
		ID:          p.ID,
		CreatedTime: p.CreatedTime,
	}
	if name, ok := p.Properties[PropName]; ok {
		ext.Title = ToRichText(name.Title)
	}
	if u, ok := p.Properties[PropURL]; ok && u.URL != nil {
		ext.URL = *u.URL
	}
	return ext
}

func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ToRichText converts API spans.
func ToRichText(spans []RichText) []content.RichText {
	if len(spans) == 0 {
		return nil
	}
	out := make([]content.RichText, 0, len(spans))
	for _, s := range spans {
		rt := content.RichText{Content: s.PlainText}
		if s.Annotations != nil {
			rt.Bold = s.Annotations.Bold
			rt.Italic = s.Annotations.Italic
			rt.Strikethrough = s.Annotations.Strikethrough
			rt.Underline = s.Annotations.Underline
			rt.Code = s.Annotations.Code
			if s.Annotations.Color != "default" {
				rt.Color = s.Annotations.Color
			}
		}
		switch {
		case s.Type == "mention" && s.Mention != nil && s.Mention.Page != nil:
			rt.MentionPageID = s.Mention.Page.ID
		case s.Text != nil:
			rt.Content = s.Text.Content
			if s.Text.Link != nil {
				rt.Href = s.Text.Link.URL
			}
		}
		out = append(out, rt)
	}
	return out
}

// ToBlock converts an API block. Children are not part of the API object;
// the caller attaches them.
func ToBlock(b *Block) content.Block {
	out := content.Block{
		ID:          b.ID,
		Type:        content.BlockType(b.Type),
		HasChildren: b.HasChildren,
	}
	switch out.Type {
	case content.TypeParagraph:
		out.Value = content.Paragraph{Text: ToRichText(b.Paragraph.Spans())}
	case content.TypeHeading1:
		out.Value = content.Heading{Level: 1, Text: ToRichText(b.Heading1.Spans())}
	case content.TypeHeading2:
		out.Value = content.Heading{Level: 2, Text: ToRichText(b.Heading2.Spans())}
	case content.TypeHeading3:
		out.Value = content.Heading{Level: 3, Text: ToRichText(b.Heading3.Spans())}
	case content.TypeBulletedListItem:
		out.Value = content.ListItem{Text: ToRichText(b.BulletedListItem.Spans())}
	case content.TypeNumberedListItem:
		out.Value = content.ListItem{Numbered: true, Text: ToRichText(b.NumberedListItem.Spans())}
	case content.TypeToDo:
		if b.ToDo == nil {
			out.Value = content.ToDo{}
			break
		}
		out.Value = content.ToDo{Checked: b.ToDo.Checked, Text: ToRichText(b.ToDo.Spans())}
	case content.TypeToggle:
		out.Value = content.Toggle{Text: ToRichText(b.Toggle.Spans())}
	case content.TypeQuote:
		out.Value = content.Quote{Text: ToRichText(b.Quote.Spans())}
	case content.TypeCode:
		if b.Code == nil {
			out.Value = content.Code{}
			break
		}
		out.Value = content.Code{Language: b.Code.Language, Text: ToRichText(b.Code.Spans())}
	case content.TypeImage:
		out.Value = toImage(b.Image)
	case content.TypeChildPage:
		if b.ChildPage != nil {
			out.Value = content.ChildPage{Title: b.ChildPage.Title}
		} else {
			out.Value = content.ChildPage{}
		}
	case content.TypeDivider:
		out.Value = content.Divider{}
	default:
		out.Value = content.Unsupported{}
	}
	return out
}

func toImage(m *MediaBlock) content.Image {
	if m == nil {
		return content.Image{}
	}
	img := content.Image{Source: m.Type, Caption: ToRichText(m.Caption)}
	if m.Type == content.SourceExternal && m.External != nil {
		img.URL = m.External.URL
	} else if m.File != nil {
		img.URL = m.File.URL
	}
	return img
}
