package commands

import (
	"fmt"
	"io"
	"strings"

	madtsql "github.com/ginga924/madt4001-sql"
	"github.com/ginga924/madt4001-sql/internal/cli/config"
	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
)

// nullText is how a null cell is shown in table and markdown output.
const nullText = "NULL"

// Renderer writes command output in the configured format. Data goes to
// Out; captions, hints and warnings go to Err unless the format is meant
// for people.
type Renderer struct {
	Out    io.Writer
	Err    io.Writer
	Format string
}

// NewRenderer creates a renderer for format.
func NewRenderer(out, errOut io.Writer, format string) *Renderer {
	format = strings.ToLower(format)
	if format == "md" {
		format = config.OutputMarkdown
	}
	if format == "" {
		format = config.OutputTable
	}
	return &Renderer{Out: out, Err: errOut, Format: format}
}

// human reports whether the output is for reading rather than parsing.
func (r *Renderer) human() bool {
	return r.Format == config.OutputTable || r.Format == config.OutputMarkdown
}

// Notef writes a note next to the data: inline for human formats, on the
// error stream otherwise so that piped csv/json stays clean.
func (r *Renderer) Notef(format string, args ...any) {
	w := r.Err
	if r.human() {
		w = r.Out
	}
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

// Warnf always writes to the error stream.
func (r *Renderer) Warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.Err, "Warning: "+format+"\n", args...)
}

// Result renders a query result followed by its shape caption.
func (r *Renderer) Result(rs *madtsql.ResultSet) error {
	if err := r.rows(rs.Columns, rs.Rows); err != nil {
		return err
	}
	r.Notef("%s", rs.Caption())
	return nil
}

// Tables renders the loaded tables.
func (r *Renderer) Tables(tables []madtsql.TableInfo) error {
	header := []string{"table", "group", "rows", "columns", "kinds", "source"}
	rows := make([][]any, len(tables))
	for i, t := range tables {
		kinds := make([]string, len(t.Kinds))
		for j, k := range t.Kinds {
			kinds[j] = k.String()
		}
		rows[i] = []any{t.Name, t.Group, int64(t.Rows), int64(t.Columns), strings.Join(kinds, ","), t.Source}
	}
	return r.rows(header, rows)
}

// Schema renders a schema listing.
func (r *Renderer) Schema(listing []madtsql.ColumnSchema) error {
	header := []string{"table", "column", "type", "pk"}
	rows := make([][]any, len(listing))
	for i, c := range listing {
		rows[i] = []any{c.Table, c.Column, c.Type, int64(c.PrimaryKey)}
	}
	return r.rows(header, rows)
}

// Report prints one warning per source that could not be loaded.
func (r *Renderer) Report(report madtsql.LoadReport) {
	for _, f := range report.Failures {
		r.Warnf("skipped %s: %v", f.Path, f.Err)
	}
}

func (r *Renderer) rows(cols []string, rows [][]any) error {
	switch r.Format {
	case config.OutputJSON:
		return renderJSON(r.Out, cols, rows)
	case config.OutputCSV:
		return renderCSV(r.Out, cols, rows)
	case config.OutputMarkdown:
		return renderMarkdown(r.Out, cols, rows)
	default:
		return renderTable(r.Out, cols, rows)
	}
}

func newTableWriter(w io.Writer, cols []string, rows [][]any, null string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, values := range rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatCell(v, null)
		}
		t.AppendRow(row)
	}
	return t
}

func renderTable(w io.Writer, cols []string, rows [][]any) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	newTableWriter(w, cols, rows, nullText).Render()
	return nil
}

func renderMarkdown(w io.Writer, cols []string, rows [][]any) error {
	newTableWriter(w, cols, rows, nullText).RenderMarkdown()
	return nil
}

func renderCSV(w io.Writer, cols []string, rows [][]any) error {
	newTableWriter(w, cols, rows, "").RenderCSV()
	return nil
}

func renderJSON(w io.Writer, cols []string, rows [][]any) error {
	records := make([]map[string]any, len(rows))
	for i, values := range rows {
		record := make(map[string]any, len(cols))
		for j, col := range cols {
			record[col] = values[j]
		}
		records[i] = record
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func formatCell(v any, null string) string {
	if v == nil {
		return null
	}
	return madtsql.FormatValue(v)
}
