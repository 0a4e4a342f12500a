// Package preview renders the first rows of a transformed table and the
// per-column error report.
package preview

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/leapxfer/internal/transfer"
	"github.com/leapstack-labs/leapxfer/pkg/core"
)

// Format is a preview output format.
type Format string

// Preview formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// DefaultRows is the number of rows shown when Options.Rows is zero.
const DefaultRows = 5

// Options control a preview.
type Options struct {
	Rows   int // zero means DefaultRows, negative means all
	Format Format
}

func (o Options) rows(total int) int {
	switch {
	case o.Rows == 0:
		return min(DefaultRows, total)
	case o.Rows < 0:
		return total
	default:
		return min(o.Rows, total)
	}
}

// ParseFormat validates a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text", "table":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown preview format %q", s)
	}
}

// Render writes the first rows of tbl. Index levels come first.
func Render(w io.Writer, tbl *core.Table, opts Options) error {
	n := opts.rows(tbl.Len())
	head := tbl.Head(n)

	cols := make([]core.Column, 0, len(head.Index())+head.Width())
	cols = append(cols, head.Index()...)
	cols = append(cols, head.Columns()...)

	if opts.Format == FormatJSON {
		return renderJSON(w, cols, n, tbl.Len())
	}

	t := newWriter(w)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col.Name
	}
	t.AppendHeader(header)

	for r := 0; r < n; r++ {
		row := make(table.Row, len(cols))
		for i, col := range cols {
			row[i] = formatCell(col.Values[r])
		}
		t.AppendRow(row)
	}

	switch opts.Format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatHTML:
		t.Style().HTML.CSSClass = "leapxfer-preview"
		t.RenderHTML()
	case FormatCSV:
		t.RenderCSV()
	default:
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", n, tbl.Len())
	}
	return nil
}

func formatCell(v core.Value) string {
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return "NaN"
	}
	if v == nil {
		return "NULL"
	}
	return core.FormatValue(v)
}

// jsonPreview keeps column order: rows hold cells in the order of Columns.
type jsonPreview struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	TotalRows int      `json:"total_rows"`
}

func renderJSON(w io.Writer, cols []core.Column, n, total int) error {
	out := jsonPreview{
		Columns:   make([]string, len(cols)),
		Rows:      make([][]any, n),
		TotalRows: total,
	}
	for i, col := range cols {
		out.Columns[i] = col.Name
	}
	for r := 0; r < n; r++ {
		row := make([]any, len(cols))
		for i, col := range cols {
			row[i] = jsonValue(col.Values[r])
		}
		out.Rows[r] = row
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func jsonValue(v core.Value) any {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
	case time.Time:
		return val.Format(time.RFC3339)
	case string:
		return val
	}
	return v
}

// RenderErrors writes the error report of the last Apply.
// Nothing is written when there are no errors.
func RenderErrors(w io.Writer, errs []*transfer.ColumnTransferError, format Format) error {
	if len(errs) == 0 {
		return nil
	}

	if format == FormatJSON {
		type entry struct {
			Column string `json:"column"`
			Rule   string `json:"rule"`
			Row    int    `json:"row"`
			Error  string `json:"error"`
		}
		out := make([]entry, len(errs))
		for i, e := range errs {
			out[i] = entry{Column: e.Column, Rule: string(e.Rule), Row: e.Row, Error: e.Error()}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"errors": out})
	}

	t := newWriter(w)
	t.AppendHeader(table.Row{"Column", "Rule", "Row", "Error"})
	for _, e := range errs {
		t.AppendRow(table.Row{e.Column, string(e.Rule), e.Row, e.Error()})
	}

	switch format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatHTML:
		t.Style().HTML.CSSClass = "leapxfer-errors"
		t.RenderHTML()
	case FormatCSV:
		t.RenderCSV()
	default:
		t.Render()
	}
	return nil
}

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	return t
}
