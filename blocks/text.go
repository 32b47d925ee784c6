package blocks

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/notionpub/content"
)

// Text renders a span sequence.
func (r *Renderer) Text(spans []content.RichText) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		r.writeSpans(&buf, spans, false)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func (r *Renderer) writeSpans(buf *bytes.Buffer, spans []content.RichText, breakLines bool) {
	for _, s := range spans {
		r.writeSpan(buf, s, breakLines)
	}
}

// writeSpan renders one span. The mention arm comes first and plain text is
// the fallthrough.
func (r *Renderer) writeSpan(buf *bytes.Buffer, s content.RichText, breakLines bool) {
	buf.WriteString("<span")
	if cls := spanClasses(s); cls != "" {
		buf.WriteString(` class="`)
		buf.WriteString(cls)
		buf.WriteString(`"`)
	}
	if style := colorStyle(s.Color); style != "" {
		buf.WriteString(` style="`)
		buf.WriteString(templ.EscapeString(style))
		buf.WriteString(`"`)
	}
	buf.WriteString(">")

	switch {
	case s.MentionPageID != "":
		href, ok := r.mentionHref(s.MentionPageID)
		if ok {
			buf.WriteString(`<a class="mention" href="`)
		} else {
			buf.WriteString(`<a class="mention missing" href="`)
		}
		buf.WriteString(templ.EscapeString(href))
		buf.WriteString(`">`)
		writeText(buf, s.Content, breakLines)
		buf.WriteString("</a>")
	case s.Href != "":
		buf.WriteString(`<a href="`)
		buf.WriteString(templ.EscapeString(string(templ.URL(s.Href))))
		buf.WriteString(`">`)
		writeText(buf, s.Content, breakLines)
		buf.WriteString("</a>")
	default:
		writeText(buf, s.Content, breakLines)
	}
	buf.WriteString("</span>")
}

func writeText(buf *bytes.Buffer, text string, breakLines bool) {
	if !breakLines {
		buf.WriteString(templ.EscapeString(text))
		return
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			buf.WriteString("<br/>")
		}
		buf.WriteString(templ.EscapeString(line))
	}
}

// mentionHref resolves a mentioned page id against the page set. Unknown ids
// have no slug; they point at the home path and ok is false.
func (r *Renderer) mentionHref(id string) (href string, ok bool) {
	p, found := r.pages.Lookup(id)
	if !found || p.Slug == "" {
		return r.home, false
	}
	return r.link(p), true
}

func spanClasses(s content.RichText) string {
	var cls []string
	if s.Bold {
		cls = append(cls, "bold")
	}
	if s.Code {
		cls = append(cls, "code")
	}
	if s.Italic {
		cls = append(cls, "italic")
	}
	if s.Strikethrough {
		cls = append(cls, "strikethrough")
	}
	if s.Underline {
		cls = append(cls, "underline")
	}
	return strings.Join(cls, " ")
}

// colorStyle maps a Notion color such as "red" or "red_background".
func colorStyle(color string) string {
	if color == "" || color == "default" {
		return ""
	}
	if bg, ok := strings.CutSuffix(color, "_background"); ok {
		return "background-color: " + bg
	}
	return "color: " + color
}
