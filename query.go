package madtsql

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/ginga924/madt4001-sql/driver"
)

// QueryRequest is a raw statement plus a row budget. MaxRows <= 0 means the
// store default (5000 unless configured otherwise).
type QueryRequest struct {
	SQL     string
	MaxRows int
}

// ResultSet is a fully collected query result.
type ResultSet struct {
	// SQL is the statement actually executed, after gating
	SQL     string
	Columns []string
	Rows    [][]any
}

// Query gates the statement, executes it and collects the result.
//
// Rejections by the gate are *model.NotReadOnlyError or
// *model.ForbiddenKeywordError and nothing is executed. Engine failures are
// returned as *QueryExecutionError carrying the engine's message.
func (s *Store) Query(ctx context.Context, req QueryRequest) (*ResultSet, error) {
	maxRows := req.MaxRows
	if maxRows <= 0 {
		maxRows = s.maxRows
	}

	gated, err := s.gate.ValidateAndLimit(req.SQL, maxRows)
	if err != nil {
		s.logger.Debug("statement rejected", slog.Any("error", err))
		return nil, err
	}

	var (
		columns []string
		rows    [][]any
	)
	start := time.Now()
	err = s.withEngine(func(engine *driver.Engine) error {
		var err error
		columns, rows, err = engine.Query(ctx, gated)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrStoreClosed) {
			return nil, err
		}
		return nil, &QueryExecutionError{SQL: gated, Err: err}
	}

	s.logger.Debug("query executed",
		slog.Int("rows", len(rows)),
		slog.Duration("elapsed", time.Since(start)))
	return &ResultSet{SQL: gated, Columns: columns, Rows: rows}, nil
}

// Shape returns the number of rows and columns.
func (rs *ResultSet) Shape() (rows, cols int) {
	return len(rs.Rows), len(rs.Columns)
}

// Caption renders the shape as "Result shape: 1,234 rows × 5 columns".
func (rs *ResultSet) Caption() string {
	rows, cols := rs.Shape()
	return fmt.Sprintf("Result shape: %s rows × %s columns",
		humanize.Comma(int64(rows)), humanize.Comma(int64(cols)))
}

// WriteCSV writes the result with a header row. withBOM prefixes a UTF-8
// byte-order mark so spreadsheet applications detect the encoding.
func (rs *ResultSet) WriteCSV(w io.Writer, withBOM bool) error {
	if withBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	return writeDelimited(w, ',', rs.Columns, rs.Rows, FormatValue)
}

func writeDelimited(w io.Writer, delimiter rune, header []string, rows [][]any, format func(any) string) error {
	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	if err := writer.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			record[i] = format(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatValue renders a cell for display. Nulls become the empty string,
// integral floats keep a ".0" and times use RFC 3339. A whole float shown
// this way is typed as an integer when read back; Dump writes floats with
// model.FormatFloat instead.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatFloat(val)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return model.FormatTemporal(val)
	default:
		return fmt.Sprint(val)
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return s + ".0"
	}
	return s
}
