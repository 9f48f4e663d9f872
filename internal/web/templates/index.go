package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/locsort/internal/history"
)

// IndexParams feeds the landing page.
type IndexParams struct {
	DefaultColumn string
	MaxFileSizeMB int64
	Runs          []history.Run
}

// Index renders the upload form and the recent run history.
func Index(p IndexParams) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Call number sorter</h1>`)
		h.raw(`<p class="muted">Upload a CSV, TSV or Excel export and download it sorted in shelf order.</p>`)

		h.raw(`<form method="post" action="/api/sort" enctype="multipart/form-data">`)
		h.raw(`<label>File (max `)
		h.text(strconv.FormatInt(p.MaxFileSizeMB, 10))
		h.raw(` MB)<input type="file" name="file" required accept=".csv,.tsv,.txt,.xlsx,.xlsm"></label>`)
		h.raw(`<label>Call number column<input type="text" name="column" value="`)
		h.text(p.DefaultColumn)
		h.raw(`"></label>`)
		h.raw(`<label>Worksheet (Excel only, blank for the first)<input type="text" name="sheet"></label>`)
		h.raw(`<label>Output<select name="output"><option value="csv">CSV</option><option value="xlsx">Excel</option></select></label>`)
		h.raw(`<button type="submit">Sort</button></form>`)

		h.component(ctx, HistoryTable(p.Runs))
		return h.err
	})
	return layout("Call number sorter", body)
}

// HistoryTable renders recent sort runs, newest first.
func HistoryTable(runs []history.Run) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h2>Recent runs</h2>`)
		if len(runs) == 0 {
			h.raw(`<p class="muted">No files sorted yet.</p>`)
			return h.err
		}

		h.raw(`<table><thead><tr><th>When</th><th>File</th><th>Column</th><th>Rows</th>`)
		h.raw(`<th>Parsed</th><th>Fallback</th><th>Short rows</th><th>Status</th></tr></thead><tbody>`)
		for _, r := range runs {
			h.raw(`<tr><td>`)
			h.text(r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			h.raw(`</td><td>`)
			h.text(r.Source)
			h.raw(`</td><td><code>`)
			h.text(r.Column)
			h.raw(`</code></td><td>`)
			h.text(strconv.Itoa(r.Rows))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(r.Parsed))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(r.Fallback))
			h.raw(`</td><td>`)
			h.text(strconv.Itoa(r.ShortRows))
			h.raw(`</td>`)
			if r.Status == history.StatusFailed {
				h.raw(`<td class="failed" title="`)
				h.text(r.Error)
				h.raw(`">failed</td>`)
			} else {
				h.raw(`<td>`)
				h.text(string(r.Status))
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}
