package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer accumulates a page and keeps the first component error.
type writer struct {
	ctx context.Context
	buf bytes.Buffer
	err error
}

func component(fn func(w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{ctx: ctx}
		fn(w)
		if w.err != nil {
			return w.err
		}
		_, err := out.Write(w.buf.Bytes())
		return err
	})
}

func (w *writer) raw(parts ...string) {
	for _, s := range parts {
		w.buf.WriteString(s)
	}
}

func (w *writer) text(s string) {
	w.buf.WriteString(templ.EscapeString(s))
}

func (w *writer) attr(name, value string) {
	w.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (w *writer) href(u string) {
	w.attr("href", string(templ.URL(u)))
}

func (w *writer) render(c templ.Component) {
	if c == nil || w.err != nil {
		return
	}
	w.err = c.Render(w.ctx, &w.buf)
}
