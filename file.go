package madtsql

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/ginga924/madt4001-sql/driver"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
)

// rawTable is one table read out of a source file, before typing.
type rawTable struct {
	// sheet is set for workbooks holding more than one sheet
	sheet   string
	columns []model.RawColumn
}

// parseSource dispatches on the file type named by path. data is already
// decompressed.
func parseSource(ctx context.Context, path string, data []byte, fallback encoding.Encoding) ([]rawTable, error) {
	switch model.DetectFileType(path) {
	case model.FileTypeCSV:
		return parseDelimited(path, data, ',', fallback)
	case model.FileTypeTSV:
		return parseDelimited(path, data, '\t', fallback)
	case model.FileTypeXLSX:
		return parseXLSX(data)
	case model.FileTypeParquet:
		return parseParquet(ctx, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// parseDelimited parses CSV or TSV text. The first record is the header;
// short rows are padded with empty cells and extra cells are dropped.
func parseDelimited(path string, data []byte, delimiter rune, fallback encoding.Encoding) ([]rawTable, error) {
	text, err := decodeText(path, data, fallback)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	if delimiter == '\t' {
		reader.LazyQuotes = true
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyData
	}

	columns, err := columnsFromRows(records[0], records[1:])
	if err != nil {
		return nil, err
	}
	return []rawTable{{columns: columns}}, nil
}

// columnsFromRows pivots a header and its rows into raw columns.
func columnsFromRows(header []string, rows [][]string) ([]model.RawColumn, error) {
	if err := driver.ValidateColumnCount(len(header)); err != nil {
		return nil, err
	}

	names := headerNames(header)
	if err := model.ValidateColumnNames(names); err != nil {
		return nil, err
	}

	columns := make([]model.RawColumn, len(names))
	for i, name := range names {
		cells := make([]string, len(rows))
		for r, row := range rows {
			if i < len(row) {
				cells[r] = row[i]
			}
		}
		columns[i] = model.NewRawColumn(name, cells)
	}
	return columns, nil
}

// headerNames names empty header cells "Unnamed: <index>".
func headerNames(header []string) []string {
	names := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			names[i] = "Unnamed: " + strconv.Itoa(i)
			continue
		}
		names[i] = h
	}
	return names
}

// parseXLSX reads every sheet of a workbook. Leading empty rows are skipped
// and the first non-empty row is the header. Sheets without a header are
// ignored.
func parseXLSX(data []byte) ([]rawTable, error) {
	xlsxFile, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer func() {
		_ = xlsxFile.Close()
	}()

	sheetNames := xlsxFile.GetSheetList()
	tables := make([]rawTable, 0, len(sheetNames))
	for _, sheetName := range sheetNames {
		header, rows, err := readSheet(xlsxFile, sheetName)
		if err != nil {
			return nil, err
		}
		if header == nil {
			continue
		}

		columns, err := columnsFromRows(header, rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", sheetName, err)
		}
		table := rawTable{columns: columns}
		if len(sheetNames) > 1 {
			table.sheet = sheetName
		}
		tables = append(tables, table)
	}

	if len(tables) == 0 {
		return nil, ErrEmptyData
	}
	return tables, nil
}

func readSheet(xlsxFile *excelize.File, sheetName string) (header []string, rows [][]string, err error) {
	iter, err := xlsxFile.Rows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheetName, err)
	}
	defer func() {
		err = errors.Join(err, iter.Close())
	}()

	for iter.Next() {
		row, err := iter.Columns()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row in sheet %s: %w", sheetName, err)
		}
		if len(row) == 0 {
			continue
		}
		if header == nil {
			header = row
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, iter.Error()
}

// parseParquet reads a Parquet file. Columns with a numeric, boolean or
// temporal Arrow type arrive already typed; everything else is handed to
// the typist as text.
func parseParquet(ctx context.Context, data []byte) ([]rawTable, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer tbl.Release()

	if err := driver.ValidateColumnCount(int(tbl.NumCols())); err != nil {
		return nil, err
	}

	columns := make([]model.RawColumn, 0, tbl.NumCols())
	for i := range int(tbl.NumCols()) {
		columns = append(columns, arrowColumn(tbl.Column(i)))
	}
	return []rawTable{{columns: columns}}, nil
}

func arrowColumn(col *arrow.Column) model.RawColumn {
	kind := kindForArrowType(col.DataType())
	chunks := col.Data().Chunks()

	if !kind.IsTyped() {
		cells := make([]string, 0, col.Len())
		for _, chunk := range chunks {
			for i := range chunk.Len() {
				if chunk.IsNull(i) {
					cells = append(cells, "")
					continue
				}
				cells = append(cells, chunk.ValueStr(i))
			}
		}
		return model.NewRawColumn(col.Name(), cells)
	}

	values := make([]any, 0, col.Len())
	for _, chunk := range chunks {
		for i := range chunk.Len() {
			values = append(values, arrowValue(chunk, i))
		}
	}
	return model.NewTypedColumn(col.Name(), kind, values)
}

func kindForArrowType(dt arrow.DataType) model.ColumnKind {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64, arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return model.KindInteger
	case arrow.FLOAT32, arrow.FLOAT64:
		return model.KindFloat
	case arrow.BOOL:
		return model.KindBoolean
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return model.KindTemporal
	default:
		return model.KindText
	}
}

func arrowValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}

	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit)
	case *array.Date32:
		return a.Value(i).ToTime()
	case *array.Date64:
		return a.Value(i).ToTime()
	default:
		return arr.ValueStr(i)
	}
}
