// Package content holds the site's domain model: posts pulled from Notion and
// the block tree that makes up a post body.
package content

import (
	"strings"
	"time"
)

// BlockType is the discriminator of a Block.
type BlockType string

const (
	TypeParagraph        BlockType = "paragraph"
	TypeHeading1         BlockType = "heading_1"
	TypeHeading2         BlockType = "heading_2"
	TypeHeading3         BlockType = "heading_3"
	TypeBulletedListItem BlockType = "bulleted_list_item"
	TypeNumberedListItem BlockType = "numbered_list_item"
	TypeToDo             BlockType = "to_do"
	TypeToggle           BlockType = "toggle"
	TypeChildPage        BlockType = "child_page"
	TypeImage            BlockType = "image"
	TypeCode             BlockType = "code"
	TypeDivider          BlockType = "divider"
	TypeQuote            BlockType = "quote"
	TypeUnsupported      BlockType = "unsupported"
)

// SupportsChildren reports whether blocks of this type carry a nested block
// list. Only toggles do.
func (t BlockType) SupportsChildren() bool {
	return t == TypeToggle
}

// Block is one node of a post body. Value holds the payload whose concrete
// type is determined by Type; unknown types carry an Unsupported value.
type Block struct {
	ID          string
	Type        BlockType
	HasChildren bool
	Value       Value
}

// Value is the closed set of block payloads.
type Value interface {
	isValue()
}

// Paragraph is a plain text block.
type Paragraph struct {
	Text []RichText `json:"text"`
}

// Heading is heading_1..heading_3.
type Heading struct {
	Level int        `json:"level"`
	Text  []RichText `json:"text"`
}

// ListItem is a bulleted or numbered list entry.
type ListItem struct {
	Numbered bool       `json:"numbered"`
	Text     []RichText `json:"text"`
}

// ToDo is a checkbox line.
type ToDo struct {
	Checked bool       `json:"checked"`
	Text    []RichText `json:"text"`
}

// Toggle is a disclosure block. Children is nil when the fetcher did not
// resolve them.
type Toggle struct {
	Text     []RichText `json:"text"`
	Children []Block    `json:"children,omitempty"`
}

// ChildPage references a sub page by title only.
type ChildPage struct {
	Title string `json:"title"`
}

// Image source kinds.
const (
	SourceExternal = "external"
	SourceFile     = "file"
)

// Image is a hosted or external image. URL is the remote location; the page
// displays the locally cached copy keyed by the block id.
type Image struct {
	Source  string     `json:"source"`
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

// Code is a source listing. Each span renders as its own fragment.
type Code struct {
	Language string     `json:"language"`
	Text     []RichText `json:"text"`
}

// Divider is a thematic break.
type Divider struct{}

// Quote is a block quotation.
type Quote struct {
	Text []RichText `json:"text"`
}

// Unsupported is the payload of any block the renderer has no arm for,
// including Notion's own "unsupported" type.
type Unsupported struct{}

func (Paragraph) isValue()   {}
func (Heading) isValue()     {}
func (ListItem) isValue()    {}
func (ToDo) isValue()        {}
func (Toggle) isValue()      {}
func (ChildPage) isValue()   {}
func (Image) isValue()       {}
func (Code) isValue()        {}
func (Divider) isValue()     {}
func (Quote) isValue()       {}
func (Unsupported) isValue() {}

// RichText is a styled run of text.
type RichText struct {
	Content       string `json:"content"`
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Code          bool   `json:"code,omitempty"`
	Color         string `json:"color,omitempty"` // "" or "default" means no color
	Href          string `json:"href,omitempty"`
	// MentionPageID is set when the span is an inline reference to another page.
	MentionPageID string `json:"mention_page_id,omitempty"`
}

// PlainText concatenates the content of spans.
func PlainText(spans []RichText) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Content)
	}
	return b.String()
}

// Post is one row of the posts database.
type Post struct {
	ID          string     `json:"id"`
	Title       []RichText `json:"title"`
	Slug        string     `json:"slug"`
	Published   bool       `json:"published"`
	Date        time.Time  `json:"date"`
	Language    string     `json:"language"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedTime time.Time  `json:"created_time"`
	EditedTime  time.Time  `json:"edited_time"`
}

// HasTag reports whether the post carries tag, ignoring case.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ExternalPost is a row of the optional external posts database: an article
// published elsewhere and linked from the index.
type ExternalPost struct {
	ID          string
	Title       []RichText
	URL         string
	CreatedTime time.Time
}
