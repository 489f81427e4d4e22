package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	madtsql "github.com/ginga924/madt4001-sql"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrNoStatement is returned when query gets no SQL to run.
var ErrNoStatement = errors.New("no SQL statement given")

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Input  string
	CSVOut string
	NoBOM  bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a read-only SQL query against the loaded files",
		Long: `Run one SELECT or WITH statement against the tables loaded from the
configured data files.

Statements that write, or that contain a forbidden keyword anywhere (string
literals and comments included), are rejected before they reach the engine.
A statement without a LIMIT is capped at --max-rows rows.

When invoked without arguments on a terminal, enters interactive REPL mode.`,
		Example: `  # Execute SQL directly
  madtsql query "SELECT * FROM sales LIMIT 10"

  # Pipe SQL on stdin
  echo "SELECT COUNT(*) FROM sales" | madtsql query

  # Save the full result as CSV with a byte-order mark
  madtsql query "SELECT * FROM sales" --csv-out sales.csv

  # Output as JSON
  madtsql query "SELECT * FROM sales" -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().StringVar(&opts.CSVOut, "csv-out", "", "Also write the result to this CSV file")
	cmd.Flags().BoolVar(&opts.NoBOM, "no-bom", false, "Omit the UTF-8 byte-order mark in --csv-out files")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	sqlQuery, interactive, err := readStatement(cmd, args, opts)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if interactive {
		return runREPL(cmd, cmdCtx)
	}

	rs, err := cmdCtx.Catalog.Query(cmd.Context(), madtsql.QueryRequest{SQL: sqlQuery})
	if err != nil {
		return err
	}
	if err := cmdCtx.Renderer.Result(rs); err != nil {
		return err
	}

	if opts.CSVOut != "" {
		if err := writeCSVFile(opts.CSVOut, rs, !opts.NoBOM); err != nil {
			return err
		}
		cmdCtx.Logger.Info("result saved", "path", opts.CSVOut)
	}
	return nil
}

// readStatement picks the SQL source: arguments, --input, or piped stdin.
// interactive is true when none is given and stdin is a terminal.
func readStatement(cmd *cobra.Command, args []string, opts *QueryOptions) (sqlQuery string, interactive bool, err error) {
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case isTerminal(cmd.InOrStdin()):
		return "", true, nil
	default:
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	}

	if strings.TrimSpace(sqlQuery) == "" {
		return "", false, ErrNoStatement
	}
	return sqlQuery, false, nil
}

func writeCSVFile(path string, rs *madtsql.ResultSet, withBOM bool) (err error) {
	f, err := os.Create(path) //nolint:gosec // output path is chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return rs.WriteCSV(f, withBOM)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
