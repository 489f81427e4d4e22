package madtsql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/xuri/excelize/v2"
)

// xlsxSheet is the sheet every exported workbook is written to.
const xlsxSheet = "Sheet1"

// Dump writes every table of store into outputDir, one file per table named
// <table><extension>. Delimited and XLSX output encodes values so that a
// reload infers the same column kinds; Parquet output keeps native types.
//
// Example:
//
//	opts := model.NewDumpOptions().
//		WithFormat(model.OutputFormatParquet).
//		WithCompression(model.CompressionZSTD)
//	err := madtsql.Dump(ctx, store, "./export", opts)
func Dump(ctx context.Context, store *Store, outputDir string, opts model.DumpOptions) error {
	if opts.Compression == model.CompressionBZ2 {
		return ErrBZ2Write
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return NewErrorContext("dump", outputDir).Error(err)
	}

	for _, table := range store.Tables() {
		if err := ctx.Err(); err != nil {
			return err
		}

		ds, err := store.Dataset(ctx, table.Name)
		if err != nil {
			return err
		}

		path := filepath.Join(outputDir, table.Name+opts.FileExtension())
		if err := dumpDataset(ds, path, opts); err != nil {
			return NewErrorContext("dump", path).WithTable(table.Name).Error(err)
		}
	}
	return nil
}

func dumpDataset(ds *model.Dataset, path string, opts model.DumpOptions) (err error) {
	writer, closeFn, err := createWriterForFile(path, opts.Compression)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeFn())
	}()

	switch opts.Format {
	case model.OutputFormatCSV:
		return writeDelimitedDataset(writer, ds, ',', opts.BOM)
	case model.OutputFormatTSV:
		return writeDelimitedDataset(writer, ds, '\t', opts.BOM)
	case model.OutputFormatXLSX:
		return writeXLSX(writer, ds)
	case model.OutputFormatParquet:
		return writeParquet(writer, ds)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, opts.Format)
	}
}

func datasetRows(ds *model.Dataset) [][]any {
	rows := make([][]any, ds.RowCount())
	for i := range rows {
		rows[i] = ds.Row(i)
	}
	return rows
}

func writeDelimitedDataset(w io.Writer, ds *model.Dataset, delimiter rune, withBOM bool) error {
	if withBOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
	}
	return writeDelimited(w, delimiter, ds.ColumnNames(), datasetRows(ds), encodeValue)
}

// encodeValue renders a cell so that the column typist reads it back as the
// same kind.
func encodeValue(v any) string {
	if f, ok := v.(float64); ok {
		return model.FormatFloat(f)
	}
	return FormatValue(v)
}

// writeXLSX writes integers and non-integral floats as numbers and every
// other value as text, so that temporals, booleans and whole floats read
// back with their kind.
func writeXLSX(w io.Writer, ds *model.Dataset) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	header := make([]any, 0, ds.ColumnCount())
	for _, name := range ds.ColumnNames() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}

	for i := range ds.RowCount() {
		row := ds.Row(i)
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = xlsxCell(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func xlsxCell(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case int64:
		return val
	case float64:
		if val != math.Trunc(val) {
			return val
		}
	}
	return encodeValue(v)
}

// writeParquet builds one Arrow record from the dataset and writes it.
// The file is assembled in memory first because the Parquet writer closes
// its sink.
func writeParquet(w io.Writer, ds *model.Dataset) error {
	fields := make([]arrow.Field, ds.ColumnCount())
	for i, col := range ds.Columns() {
		fields[i] = arrow.Field{Name: col.Name, Type: arrowTypeFor(col.Kind), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for i, col := range ds.Columns() {
		appendColumn(builder.Field(i), col)
	}
	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	fw, err := pqarrow.NewFileWriter(schema, &buf, parquet.NewWriterProperties(),
		pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(record); err != nil {
		return errors.Join(fmt.Errorf("failed to write parquet record: %w", err), fw.Close())
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}

	_, err = w.Write(buf.Bytes())
	return err
}

func arrowTypeFor(kind model.ColumnKind) arrow.DataType {
	switch kind {
	case model.KindInteger:
		return arrow.PrimitiveTypes.Int64
	case model.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case model.KindBoolean:
		return arrow.FixedWidthTypes.Boolean
	case model.KindTemporal:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

func appendColumn(b array.Builder, col model.Column) {
	for _, v := range col.Values {
		if v == nil {
			b.AppendNull()
			continue
		}
		switch fb := b.(type) {
		case *array.Int64Builder:
			fb.Append(v.(int64))
		case *array.Float64Builder:
			fb.Append(v.(float64))
		case *array.BooleanBuilder:
			fb.Append(v.(bool))
		case *array.TimestampBuilder:
			fb.Append(arrow.Timestamp(v.(time.Time).UnixMicro()))
		case *array.StringBuilder:
			fb.Append(FormatValue(v))
		}
	}
}
