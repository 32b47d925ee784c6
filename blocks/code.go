package blocks

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultCodeStyle is the chroma style for code blocks.
const DefaultCodeStyle = "nord"

type highlighter struct {
	style     *chroma.Style
	formatter *html.Formatter
}

func newHighlighter(style string) *highlighter {
	return &highlighter{
		style:     styles.Get(style),
		formatter: html.New(html.WithClasses(false), html.TabWidth(4)),
	}
}

// component renders one code fragment tagged with its language. Unknown
// languages, including Notion's "plain text", use the fallback lexer.
func (h *highlighter) component(language, source string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		buf.WriteString(`<div class="code-block" data-language="` + templ.EscapeString(language) + `">`)
		if err := h.highlight(&buf, language, source); err != nil {
			buf.WriteString("<pre><code>" + templ.EscapeString(source) + "</code></pre>")
		}
		buf.WriteString("</div>")
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func (h *highlighter) highlight(buf *bytes.Buffer, language, source string) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := h.formatter.Format(&out, h.style, it); err != nil {
		return err
	}
	buf.Write(out.Bytes())
	return nil
}
