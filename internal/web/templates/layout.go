// Package templates renders the server's HTML pages as templ components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `
body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:64rem;color:#1f2937;padding:0 1rem}
h1{font-size:1.5rem}h2{font-size:1.15rem;margin-top:2rem}
form{display:grid;gap:.75rem;max-width:32rem}
label{display:grid;gap:.25rem;font-size:.9rem}
input,textarea,select,button{font:inherit;padding:.4rem}
button{background:#1d4ed8;color:#fff;border:0;border-radius:.25rem;cursor:pointer}
table{border-collapse:collapse;width:100%;font-size:.85rem}
th,td{border-bottom:1px solid #e5e7eb;padding:.35rem .5rem;text-align:left}
code{font-family:ui-monospace,monospace}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:1rem;border-radius:.25rem}
.muted{color:#6b7280}.failed{color:#b91c1c}
`

// htmlWriter writes to w and remembers the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) component(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// layout wraps body in the page shell.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body>`)
		h.component(ctx, body)
		h.raw(`</body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error box.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<p>`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="muted">Error code: <code>`)
		h.text(code)
		h.raw(`</code></p></div>`)
		return h.err
	})
}

// ErrorPage is ErrorAlert as a full page with a link back to the form.
func ErrorPage(message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Call number sorter</h1>`)
		h.component(ctx, ErrorAlert(message, action, code))
		h.raw(`<p><a href="/">Back</a></p>`)
		return h.err
	})
	return layout("Error "+code, body)
}
