package madtsql

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/ginga924/madt4001-sql/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDelimited(t *testing.T) {
	t.Parallel()

	t.Run("ragged rows are padded and trimmed", func(t *testing.T) {
		t.Parallel()

		tables, err := parseDelimited("a.csv", []byte("a,b\n1\n2,3,4\n"), ',', nil)
		require.NoError(t, err)
		require.Len(t, tables, 1)

		cols := tables[0].columns
		require.Len(t, cols, 2)
		assert.Equal(t, []string{"1", "2"}, cols[0].Cells)
		assert.Equal(t, []string{"", "3"}, cols[1].Cells)
	})

	t.Run("tab separated with stray quotes", func(t *testing.T) {
		t.Parallel()

		tables, err := parseDelimited("a.tsv", []byte("name\tnote\nbob\tsays \"hi\"\n"), '\t', nil)
		require.NoError(t, err)
		assert.Equal(t, []string{`says "hi"`}, tables[0].columns[1].Cells)
	})

	t.Run("empty header cells are named", func(t *testing.T) {
		t.Parallel()

		tables, err := parseDelimited("a.csv", []byte(",x,\n1,2,3\n"), ',', nil)
		require.NoError(t, err)
		names := make([]string, 0, 3)
		for _, c := range tables[0].columns {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"Unnamed: 0", "x", "Unnamed: 2"}, names)
	})

	t.Run("duplicate header", func(t *testing.T) {
		t.Parallel()

		_, err := parseDelimited("a.csv", []byte("id,ID\n1,2\n"), ',', nil)
		assert.True(t, errors.Is(err, model.ErrDuplicateColumnName))
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		_, err := parseDelimited("a.csv", nil, ',', nil)
		assert.True(t, errors.Is(err, ErrEmptyData))
	})

	t.Run("undecodable bytes", func(t *testing.T) {
		t.Parallel()

		_, err := parseDelimited("a.csv", []byte("a\n\xff\xfe\xfd\n"), ',', nil)
		var decodeErr *DecodeError
		assert.True(t, errors.As(err, &decodeErr))
	})
}

func TestColumnsFromRows_TooManyColumns(t *testing.T) {
	t.Parallel()

	header := make([]string, driver.MaxColumnCount+1)
	for i := range header {
		header[i] = "c" + strconv.Itoa(i)
	}
	_, err := columnsFromRows(header, nil)
	assert.True(t, errors.Is(err, driver.ErrTooManyColumns))
}

func newXLSX(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	t.Parallel()

	t.Run("single sheet keeps the file name", func(t *testing.T) {
		t.Parallel()

		data := newXLSX(t, map[string][][]any{
			"Data": {{"id", "name"}, {1, "alice"}, {2, "bob"}},
		})
		tables, err := parseXLSX(data)
		require.NoError(t, err)
		require.Len(t, tables, 1)
		assert.Equal(t, "", tables[0].sheet)
		assert.Equal(t, []string{"1", "2"}, tables[0].columns[0].Cells)
		assert.Equal(t, []string{"alice", "bob"}, tables[0].columns[1].Cells)
	})

	t.Run("empty workbook", func(t *testing.T) {
		t.Parallel()

		data := newXLSX(t, map[string][][]any{"Sheet1": nil})
		_, err := parseXLSX(data)
		assert.True(t, errors.Is(err, ErrEmptyData))
	})

	t.Run("not a workbook", func(t *testing.T) {
		t.Parallel()

		_, err := parseXLSX([]byte("plain text"))
		assert.Error(t, err)
	})
}

func TestParseParquet_TypedColumns(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	ds, err := model.NewDataset(model.NewTableName("events"), []model.Column{
		{Name: "id", Kind: model.KindInteger, Values: []any{int64(1), nil}},
		{Name: "score", Kind: model.KindFloat, Values: []any{0.5, 2.0}},
		{Name: "ok", Kind: model.KindBoolean, Values: []any{true, false}},
		{Name: "at", Kind: model.KindTemporal, Values: []any{ts, nil}},
		{Name: "code", Kind: model.KindText, Values: []any{"007", ""}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeParquet(&buf, ds))

	tables, err := parseParquet(context.Background(), buf.Bytes())
	require.NoError(t, err)
	require.Len(t, tables, 1)

	cols := tables[0].columns
	require.Len(t, cols, 5)
	assert.Equal(t, model.KindInteger, cols[0].Kind)
	assert.Equal(t, []any{int64(1), nil}, cols[0].Values)
	assert.Equal(t, model.KindFloat, cols[1].Kind)
	assert.Equal(t, []any{0.5, 2.0}, cols[1].Values)
	assert.Equal(t, model.KindBoolean, cols[2].Kind)
	assert.Equal(t, []any{true, false}, cols[2].Values)
	assert.Equal(t, model.KindTemporal, cols[3].Kind)
	require.IsType(t, time.Time{}, cols[3].Values[0])
	assert.True(t, ts.Equal(cols[3].Values[0].(time.Time)))
	assert.Nil(t, cols[3].Values[1])
	assert.Equal(t, model.KindText, cols[4].Kind)
	assert.Equal(t, []string{"007", ""}, cols[4].Cells)
}

func TestParseSource_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := parseSource(context.Background(), "notes.txt", []byte("x"), nil)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
