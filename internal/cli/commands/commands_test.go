package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/ginga924/madt4001-sql/internal/cli/config"
	"github.com/ginga924/madt4001-sql/internal/logging"
	"github.com/ginga924/madt4001-sql/internal/testutil"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteString(t, dir, "people.tsv", "name\tage\nann\t31\nbo\t42\n")
	return dir
}

func newConfig(t *testing.T, data ...string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Data = data
	return cfg
}

type result struct {
	stdout string
	stderr string
	err    error
}

func runCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	ctx := config.NewContext(context.Background(), cfg)
	ctx = logging.NewContext(ctx, testutil.NewTestLogger(t))
	err := cmd.ExecuteContext(ctx)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestQueryCommand(t *testing.T) {
	t.Parallel()

	dir := newDataDir(t)

	t.Run("table output with caption", func(t *testing.T) {
		t.Parallel()

		res := runCommand(t, NewQueryCommand(), newConfig(t, dir), "", "SELECT name FROM people ORDER BY name")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "ann")
		assert.Contains(t, res.stdout, "bo")
		assert.Contains(t, res.stdout, "Result shape: 2 rows × 1 columns")
	})

	t.Run("json output keeps stdout parseable", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig(t, dir)
		cfg.Output = config.OutputJSON
		res := runCommand(t, NewQueryCommand(), cfg, "", "SELECT name, age FROM people ORDER BY name")
		require.NoError(t, res.err)

		var records []map[string]any
		require.NoError(t, json.Unmarshal([]byte(res.stdout), &records))
		require.Len(t, records, 2)
		assert.Equal(t, "ann", records[0]["name"])
		assert.InDelta(t, 31, records[0]["age"], 0)
		assert.Contains(t, res.stderr, "Result shape: 2 rows × 2 columns")
	})

	t.Run("statement from stdin", func(t *testing.T) {
		t.Parallel()

		cfg := newConfig(t, dir)
		cfg.Output = config.OutputCSV
		res := runCommand(t, NewQueryCommand(), cfg, "SELECT COUNT(*) AS n FROM people;\n")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "2")
	})

	t.Run("empty stdin", func(t *testing.T) {
		t.Parallel()

		res := runCommand(t, NewQueryCommand(), newConfig(t, dir), "  \n")
		assert.True(t, errors.Is(res.err, ErrNoStatement))
	})

	t.Run("write statement is rejected", func(t *testing.T) {
		t.Parallel()

		res := runCommand(t, NewQueryCommand(), newConfig(t, dir), "", "DELETE FROM people")
		var forbidden *model.ForbiddenKeywordError
		require.True(t, errors.As(res.err, &forbidden))
		assert.Equal(t, "DELETE", forbidden.Keyword)
	})

	t.Run("non select statement is rejected", func(t *testing.T) {
		t.Parallel()

		res := runCommand(t, NewQueryCommand(), newConfig(t, dir), "", "EXPLAIN SELECT * FROM people")
		var notReadOnly *model.NotReadOnlyError
		assert.True(t, errors.As(res.err, &notReadOnly))
	})

	t.Run("csv file with byte-order mark", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "people.csv")
		res := runCommand(t, NewQueryCommand(), newConfig(t, dir), "",
			"SELECT name FROM people ORDER BY name", "--csv-out", out)
		require.NoError(t, res.err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "\xEF\xBB\xBFname\nann\nbo\n", string(data))
	})
}

func TestTablesCommand(t *testing.T) {
	t.Parallel()

	dir := newDataDir(t)
	testutil.WriteString(t, dir, "orders.csv", "id,total\n1,2.5\n")
	testutil.WriteFile(t, dir, "broken.csv", []byte("id\n\xff\xfe\xfd\n"))

	res := runCommand(t, NewTablesCommand(), newConfig(t, dir), "")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "orders")
	assert.Contains(t, res.stdout, "people")
	assert.Contains(t, res.stdout, "integer,float")
	assert.Contains(t, res.stdout, "Try: SELECT * FROM orders LIMIT 100;")
	assert.Contains(t, res.stderr, "Warning: skipped")
	assert.Contains(t, res.stderr, "broken.csv")
}

func TestTablesCommand_Empty(t *testing.T) {
	t.Parallel()

	res := runCommand(t, NewTablesCommand(), newConfig(t, t.TempDir()), "")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No tables loaded")
}

func TestSchemaCommand(t *testing.T) {
	t.Parallel()

	dir := newDataDir(t)
	cfg := newConfig(t, dir)
	cfg.Output = config.OutputCSV

	res := runCommand(t, NewSchemaCommand(), cfg, "", "people", "missing")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "people,age,INTEGER,0")
	assert.Contains(t, res.stdout, "people,name,TEXT,0")
	assert.NotContains(t, res.stdout, "missing")
}

func TestExportCommand(t *testing.T) {
	t.Parallel()

	dir := newDataDir(t)

	t.Run("parquet with zstd", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out")
		res := runCommand(t, NewExportCommand(), newConfig(t, dir), "",
			"--dir", out, "--format", "parquet", "--compress", "zst")
		require.NoError(t, res.err)
		assert.FileExists(t, filepath.Join(out, "people.parquet.zst"))
		assert.Contains(t, res.stdout, "Exported 1 tables")
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		res := runCommand(t, NewExportCommand(), newConfig(t, dir), "",
			"--dir", t.TempDir(), "--format", "xml")
		assert.Error(t, res.err)
	})

	t.Run("dir is required", func(t *testing.T) {
		t.Parallel()

		res := runCommand(t, NewExportCommand(), newConfig(t, dir), "")
		assert.Error(t, res.err)
	})
}
