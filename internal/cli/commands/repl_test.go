package commands

import (
	"bytes"
	"context"
	"testing"

	madtsql "github.com/ginga924/madt4001-sql"
	"github.com/ginga924/madt4001-sql/internal/cli/config"
	"github.com/ginga924/madt4001-sql/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommandContext(t *testing.T, cfg *config.Config) (*CommandContext, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	builder, err := NewBuilder(cfg, logger)
	require.NoError(t, err)

	catalog := madtsql.NewCatalog(builder)
	_, err = catalog.Reload(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = catalog.Close() })

	var stdout, stderr bytes.Buffer
	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Catalog:  catalog,
		Renderer: NewRenderer(&stdout, &stderr, cfg.Output),
	}, &stdout, &stderr
}

func TestREPLSession_MultiLineStatement(t *testing.T) {
	t.Parallel()

	cmdCtx, stdout, stderr := newTestCommandContext(t, newConfig(t, newDataDir(t)))
	session := newREPLSession(cmdCtx)
	ctx := context.Background()

	quit, pending := session.handleLine(ctx, "SELECT name")
	assert.False(t, quit)
	assert.True(t, pending)

	quit, pending = session.handleLine(ctx, "")
	assert.False(t, quit)
	assert.True(t, pending)

	quit, pending = session.handleLine(ctx, "FROM people ORDER BY name;")
	assert.False(t, quit)
	assert.False(t, pending)

	assert.Contains(t, stdout.String(), "ann")
	assert.Contains(t, stdout.String(), "Result shape: 2 rows × 1 columns")
	assert.Empty(t, stderr.String())
}

func TestREPLSession_Errors(t *testing.T) {
	t.Parallel()

	cmdCtx, _, stderr := newTestCommandContext(t, newConfig(t, newDataDir(t)))
	session := newREPLSession(cmdCtx)
	ctx := context.Background()

	_, pending := session.handleLine(ctx, "DROP TABLE people;")
	assert.False(t, pending)
	assert.Contains(t, stderr.String(), "Error: statement contains a forbidden keyword: DROP")

	session.handleLine(ctx, ".bogus")
	assert.Contains(t, stderr.String(), "Unknown command: .bogus")

	rs, err := cmdCtx.Catalog.Query(ctx, madtsql.QueryRequest{SQL: "SELECT COUNT(*) FROM people"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), rs.Rows[0][0])
}

func TestREPLSession_DotCommands(t *testing.T) {
	t.Parallel()

	dir := newDataDir(t)
	cmdCtx, stdout, _ := newTestCommandContext(t, newConfig(t, dir))
	session := newREPLSession(cmdCtx)
	ctx := context.Background()

	session.handleLine(ctx, ".help")
	assert.Contains(t, stdout.String(), ".reload")

	session.handleLine(ctx, ".tables")
	assert.Contains(t, stdout.String(), "people")

	session.handleLine(ctx, ".schema people")
	assert.Contains(t, stdout.String(), "INTEGER")

	before := cmdCtx.Catalog.Current().Generation()
	testutil.WriteString(t, dir, "orders.csv", "id\n1\n")
	session.handleLine(ctx, ".reload")
	assert.NotEqual(t, before, cmdCtx.Catalog.Current().Generation())
	assert.Equal(t, []string{"orders", "people"}, cmdCtx.Catalog.Current().TableNames())

	candidates, _ := session.completer.Do([]rune("ord"), 3)
	assert.NotEmpty(t, candidates)

	quit, _ := session.handleLine(ctx, ".quit")
	assert.True(t, quit)
	quit, _ = session.handleLine(ctx, ".EXIT")
	assert.True(t, quit)
}

func TestTableCompleter(t *testing.T) {
	t.Parallel()

	c := &tableCompleter{}
	candidates, _ := c.Do([]rune("pe"), 2)
	assert.Empty(t, candidates)

	c.update([]string{"people", "sales"})
	candidates, length := c.Do([]rune("pe"), 2)
	require.Len(t, candidates, 1)
	assert.Equal(t, 2, length)
	assert.Equal(t, "ople ", string(candidates[0]))
}
