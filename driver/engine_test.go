package driver

import (
	"context"
	"testing"
	"time"

	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, chunkSize int) *Engine {
	t.Helper()

	engine, err := Open(context.Background(), chunkSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })
	return engine
}

func newDataset(t *testing.T, name string, columns ...model.Column) *model.Dataset {
	t.Helper()

	ds, err := model.NewDataset(model.NewTableName(name), columns)
	require.NoError(t, err)
	return ds
}

func TestEngine_ReplaceTable(t *testing.T) {
	t.Parallel()

	t.Run("typed columns are declared and stored", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(t, 0)
		ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		ds := newDataset(t, "orders",
			model.Column{Name: "id", Kind: model.KindInteger, Values: []any{int64(1), int64(2)}},
			model.Column{Name: "amount", Kind: model.KindFloat, Values: []any{1.5, nil}},
			model.Column{Name: "paid", Kind: model.KindBoolean, Values: []any{true, false}},
			model.Column{Name: "at", Kind: model.KindTemporal, Values: []any{ts, nil}},
			model.Column{Name: "note", Kind: model.KindText, Values: []any{"a\x00b", ""}},
		)
		require.NoError(t, engine.ReplaceTable(context.Background(), ds))

		info, ok, err := engine.TableInfo(context.Background(), "orders")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []ColumnInfo{
			{Name: "id", Type: "INTEGER"},
			{Name: "amount", Type: "REAL"},
			{Name: "paid", Type: "BOOLEAN"},
			{Name: "at", Type: "TIMESTAMP"},
			{Name: "note", Type: "TEXT"},
		}, info)

		columns, records, err := engine.Query(context.Background(),
			"SELECT id, amount, CAST(paid AS INTEGER) AS paid, note FROM orders ORDER BY id")
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "amount", "paid", "note"}, columns)
		require.Len(t, records, 2)
		assert.Equal(t, []any{int64(1), 1.5, int64(1), "ab"}, records[0])
		assert.Equal(t, []any{int64(2), nil, int64(0), ""}, records[1])
	})

	t.Run("existing table is replaced", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(t, 0)
		first := newDataset(t, "t",
			model.Column{Name: "a", Kind: model.KindInteger, Values: []any{int64(1), int64(2), int64(3)}})
		second := newDataset(t, "t",
			model.Column{Name: "b", Kind: model.KindText, Values: []any{"x"}})

		require.NoError(t, engine.ReplaceTable(context.Background(), first))
		require.NoError(t, engine.ReplaceTable(context.Background(), second))

		columns, records, err := engine.Query(context.Background(), "SELECT * FROM t")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, columns)
		assert.Equal(t, [][]any{{"x"}}, records)
	})

	t.Run("rows spanning several chunks", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(t, 3)
		values := make([]any, 10)
		for i := range values {
			values[i] = int64(i)
		}
		ds := newDataset(t, "nums", model.Column{Name: "n", Kind: model.KindInteger, Values: values})
		require.NoError(t, engine.ReplaceTable(context.Background(), ds))

		_, records, err := engine.Query(context.Background(), "SELECT COUNT(*), SUM(n) FROM nums")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{int64(10), int64(45)}}, records)
	})

	t.Run("nil dataset", func(t *testing.T) {
		t.Parallel()

		engine := newTestEngine(t, 0)
		assert.ErrorIs(t, engine.ReplaceTable(context.Background(), nil), ErrNilDataset)
	})
}

func TestEngine_TableNames(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, 0)
	for _, name := range []string{"zeta", "alpha"} {
		ds := newDataset(t, name, model.Column{Name: "x", Kind: model.KindText, Values: []any{"1"}})
		require.NoError(t, engine.ReplaceTable(context.Background(), ds))
	}

	names, err := engine.TableNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)
}

func TestEngine_TableInfoMissing(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, 0)
	info, ok, err := engine.TableInfo(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, info)
}

func TestEngine_QueryError(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, 0)
	_, _, err := engine.Query(context.Background(), "SELECT * FROM missing_table")
	assert.Error(t, err)
}

func TestBuildPlaceholders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", buildPlaceholders(0))
	assert.Equal(t, "?", buildPlaceholders(1))
	assert.Equal(t, "?, ?, ?", buildPlaceholders(3))
}
