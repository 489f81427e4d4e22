package cli

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/ginga924/madt4001-sql/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

//nolint:paralleltest // the root command installs the default slog logger
func TestRootCmd_Query(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteString(t, dir, "Sales 2024.csv", "id,amount\n1,10.5\n2,20\n")

	stdout, _, err := execute(t, "--data", dir, "-o", "csv", "query", "SELECT SUM(amount) AS total FROM sales_2024")
	require.NoError(t, err)
	assert.Contains(t, stdout, "30.5")
}

//nolint:paralleltest // the root command installs the default slog logger
func TestRootCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteString(t, dir, "input/1st quarter.csv", "q\n1\n")
	cfgPath := testutil.WriteString(t, dir, "madtsql.yaml", `
data: [input]
overrides:
  - file: "1st quarter.csv"
    table: quarter
output: csv
`)

	stdout, _, err := execute(t, "--config", cfgPath, "tables")
	require.NoError(t, err)
	assert.Contains(t, stdout, "quarter")
}

//nolint:paralleltest // the root command installs the default slog logger
func TestRootCmd_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, "--max-rows", "0", "tables")
	assert.Error(t, err)
}

//nolint:paralleltest // the root command installs the default slog logger
func TestRootCmd_Version(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "madtsql "+Version)
}
