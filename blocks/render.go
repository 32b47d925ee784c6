// Package blocks renders a post body: each block becomes a templ.Component
// fragment, dispatched on the block's payload.
package blocks

import (
	"bytes"
	"context"
	"io"
	"iter"

	"github.com/a-h/templ"

	"github.com/eringen/notionpub/content"
)

// ImageLocator maps an image block id to the public URL of its cached copy.
type ImageLocator interface {
	URL(id string) string
}

// Renderer turns blocks into markup. Mentions are resolved against the page
// set it was built with.
type Renderer struct {
	pages  *content.PageSet
	images ImageLocator
	link   func(content.Post) string
	home   string
	code   *highlighter
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLinks sets how a mentioned post is addressed. The default is
// "/<slug>/".
func WithLinks(fn func(content.Post) string) Option {
	return func(r *Renderer) {
		r.link = fn
	}
}

// WithHome sets the target of mentions whose page is unknown.
func WithHome(path string) Option {
	return func(r *Renderer) {
		r.home = path
	}
}

// WithCodeStyle selects the chroma style used for code blocks.
func WithCodeStyle(name string) Option {
	return func(r *Renderer) {
		r.code = newHighlighter(name)
	}
}

// New creates a Renderer.
func New(pages *content.PageSet, images ImageLocator, opts ...Option) *Renderer {
	r := &Renderer{
		pages:  pages,
		images: images,
		link:   func(p content.Post) string { return "/" + p.Slug + "/" },
		home:   "/",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.code == nil {
		r.code = newHighlighter(DefaultCodeStyle)
	}
	return r
}

// Fragments yields one component per block in input order. A code block
// yields one component per span.
func (r *Renderer) Fragments(blocks []content.Block) iter.Seq[templ.Component] {
	return func(yield func(templ.Component) bool) {
		for _, b := range blocks {
			if c, ok := b.Value.(content.Code); ok {
				for _, span := range c.Text {
					if !yield(r.code.component(c.Language, span.Content)) {
						return
					}
				}
				continue
			}
			if !yield(r.Render(b)) {
				return
			}
		}
	}
}

// Body renders a page body. Runs of list items of the same kind are wrapped
// in <ul> or <ol>.
func (r *Renderer) Body(blocks []content.Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := r.writeBlocks(ctx, &buf, blocks); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func (r *Renderer) writeBlocks(ctx context.Context, buf *bytes.Buffer, blocks []content.Block) error {
	open := ""
	closeList := func() {
		if open != "" {
			buf.WriteString("</" + open + ">")
			open = ""
		}
	}
	for _, b := range blocks {
		tag := ""
		if li, ok := b.Value.(content.ListItem); ok {
			tag = "ul"
			if li.Numbered {
				tag = "ol"
			}
		}
		if tag != open {
			closeList()
			if tag != "" {
				buf.WriteString("<" + tag + ">")
				open = tag
			}
		}
		if err := r.writeBlock(ctx, buf, b); err != nil {
			return err
		}
	}
	closeList()
	return nil
}

// Render renders a single block.
func (r *Renderer) Render(b content.Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if err := r.writeBlock(ctx, &buf, b); err != nil {
			return err
		}
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func (r *Renderer) writeBlock(ctx context.Context, buf *bytes.Buffer, b content.Block) error {
	switch v := b.Value.(type) {
	case content.Paragraph:
		r.wrap(buf, "p", v.Text)
	case content.Heading:
		r.wrap(buf, headingTag(v.Level), v.Text)
	case content.ListItem:
		r.wrap(buf, "li", v.Text)
	case content.ToDo:
		id := templ.EscapeString(b.ID)
		buf.WriteString(`<div class="to-do"><label for="` + id + `"><input type="checkbox" id="` + id + `" disabled`)
		if v.Checked {
			buf.WriteString(" checked")
		}
		buf.WriteString("/> ")
		r.writeSpans(buf, v.Text, false)
		buf.WriteString("</label></div>")
	case content.Toggle:
		buf.WriteString("<details><summary>")
		r.writeSpans(buf, v.Text, false)
		buf.WriteString("</summary>")
		if err := r.writeBlocks(ctx, buf, v.Children); err != nil {
			return err
		}
		buf.WriteString("</details>")
	case content.ChildPage:
		buf.WriteString("<p>" + templ.EscapeString(v.Title) + "</p>")
	case content.Image:
		r.writeImage(buf, b.ID, v)
	case content.Code:
		for _, span := range v.Text {
			if err := r.code.component(v.Language, span.Content).Render(ctx, buf); err != nil {
				return err
			}
		}
	case content.Divider:
		buf.WriteString("<hr/>")
	case content.Quote:
		buf.WriteString("<blockquote>")
		r.writeSpans(buf, v.Text, true)
		buf.WriteString("</blockquote>")
	default:
		writePlaceholder(buf, b.Type)
	}
	return nil
}

func (r *Renderer) wrap(buf *bytes.Buffer, tag string, spans []content.RichText) {
	buf.WriteString("<" + tag + ">")
	r.writeSpans(buf, spans, false)
	buf.WriteString("</" + tag + ">")
}

// Notion's heading_1 is the page's second level; the title owns <h1>.
func headingTag(level int) string {
	switch level {
	case 1:
		return "h2"
	case 2:
		return "h3"
	default:
		return "h4"
	}
}

func (r *Renderer) writeImage(buf *bytes.Buffer, id string, img content.Image) {
	caption := ""
	if len(img.Caption) > 0 {
		caption = img.Caption[0].Content
	}
	src := ""
	if r.images != nil {
		src = r.images.URL(id)
	}
	buf.WriteString(`<figure><img src="` + templ.EscapeString(src) + `" alt="` + templ.EscapeString(caption) + `" loading="lazy"/>`)
	if caption != "" {
		buf.WriteString("<figcaption>" + templ.EscapeString(caption) + "</figcaption>")
	}
	buf.WriteString("</figure>")
}

func writePlaceholder(buf *bytes.Buffer, t content.BlockType) {
	reason := string(t)
	if t == content.TypeUnsupported {
		reason = "unsupported by Notion API"
	}
	buf.WriteString(`<p class="unsupported">❌ Unsupported block (` + templ.EscapeString(reason) + `)</p>`)
}
