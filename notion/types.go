// Defines Notion API response types.

package notion

import (
	"time"
)

// PaginatedResponse is the common structure for paginated API responses.
type PaginatedResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// QueryResponse is the response from database query endpoint.
type QueryResponse = PaginatedResponse[Page]

// BlocksResponse is the response from block children endpoint.
type BlocksResponse = PaginatedResponse[Block]

// Parent represents the parent of a page or block.
type Parent struct {
	Type       string `json:"type"` // "database_id", "page_id", "workspace", "block_id"
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	BlockID    string `json:"block_id,omitempty"`
}

// Page represents a Notion page (including database rows).
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Parent         Parent                   `json:"parent"`
	Archived       bool                     `json:"archived"`
	Properties     map[string]PropertyValue `json:"properties"`
	URL            string                   `json:"url"`
}

// PropertyValue represents a property value on a page. Only the property
// kinds the blog reads are decoded.
type PropertyValue struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Title       []RichText    `json:"title,omitempty"`
	RichText    []RichText    `json:"rich_text,omitempty"`
	Select      *SelectValue  `json:"select,omitempty"`
	MultiSelect []SelectValue `json:"multi_select,omitempty"`
	Date        *DateValue    `json:"date,omitempty"`
	Checkbox    *bool         `json:"checkbox,omitempty"`
	URL         *string       `json:"url,omitempty"`
}

// RichText represents formatted text content.
type RichText struct {
	Type        string       `json:"type"` // "text", "mention", "equation"
	Text        *TextContent `json:"text,omitempty"`
	Mention     *Mention     `json:"mention,omitempty"`
	Annotations *Annotations `json:"annotations,omitempty"`
	PlainText   string       `json:"plain_text"`
	Href        *string      `json:"href,omitempty"`
}

// TextContent represents plain text content.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Link represents a hyperlink.
type Link struct {
	URL string `json:"url"`
}

// Mention represents a mention in rich text.
type Mention struct {
	Type string   `json:"type"` // "user", "page", "database", "date", "link_preview"
	Page *PageRef `json:"page,omitempty"`
}

// PageRef is a reference to a page.
type PageRef struct {
	ID string `json:"id"`
}

// Annotations represents text formatting.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// SelectValue represents a select property value.
type SelectValue struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DateValue represents a date property value.
type DateValue struct {
	Start    string  `json:"start"`
	End      *string `json:"end,omitempty"`
	TimeZone *string `json:"time_zone,omitempty"`
}

// File represents a file reference.
type File struct {
	URL        string     `json:"url"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
}

// Block represents a Notion block.
type Block struct {
	Object         string    `json:"object"`
	ID             string    `json:"id"`
	Parent         Parent    `json:"parent"`
	Type           string    `json:"type"`
	CreatedTime    time.Time `json:"created_time"`
	LastEditedTime time.Time `json:"last_edited_time"`
	Archived       bool      `json:"archived"`
	HasChildren    bool      `json:"has_children"`

	// Block type content - only the matching type field will be populated
	Paragraph        *TextBlock      `json:"paragraph,omitempty"`
	Heading1         *TextBlock      `json:"heading_1,omitempty"`
	Heading2         *TextBlock      `json:"heading_2,omitempty"`
	Heading3         *TextBlock      `json:"heading_3,omitempty"`
	BulletedListItem *TextBlock      `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextBlock      `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoBlock      `json:"to_do,omitempty"`
	Toggle           *TextBlock      `json:"toggle,omitempty"`
	Quote            *TextBlock      `json:"quote,omitempty"`
	Code             *CodeBlock      `json:"code,omitempty"`
	Image            *MediaBlock     `json:"image,omitempty"`
	ChildPage        *ChildPageBlock `json:"child_page,omitempty"`
	Divider          *struct{}       `json:"divider,omitempty"`
}

// TextBlock is the payload shared by paragraph, heading, list item, toggle
// and quote blocks. API versions before 2022-02-22 name the span list "text".
type TextBlock struct {
	RichText []RichText `json:"rich_text"`
	Text     []RichText `json:"text,omitempty"`
	Color    string     `json:"color"`
}

// Spans returns the span list under whichever name the API used.
func (b *TextBlock) Spans() []RichText {
	if b == nil {
		return nil
	}
	if len(b.RichText) > 0 {
		return b.RichText
	}
	return b.Text
}

// ToDoBlock represents a to-do block.
type ToDoBlock struct {
	TextBlock
	Checked bool `json:"checked"`
}

// CodeBlock represents a code block.
type CodeBlock struct {
	TextBlock
	Caption  []RichText `json:"caption"`
	Language string     `json:"language"`
}

// MediaBlock represents an image block.
type MediaBlock struct {
	Type     string     `json:"type"` // "file" or "external"
	File     *File      `json:"file,omitempty"`
	External *File      `json:"external,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// ChildPageBlock represents a child page block.
type ChildPageBlock struct {
	Title string `json:"title"`
}

// Error represents a Notion API error response.
type Error struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
