package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	madtsql "github.com/ginga924/madt4001-sql"
	"github.com/spf13/cobra"
)

const (
	prompt         = "madtsql> "
	continuePrompt = "   ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive SQL shell over the loaded files",
		Long: `Start an interactive shell. Statements end with a semicolon and may span
several lines. Dot-commands (.tables, .schema, .reload, .help, .quit) run
immediately. With --watch the data is reloaded when the data directories
change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return runREPL(cmd, cmdCtx)
		},
	}
}

func runREPL(cmd *cobra.Command, cmdCtx *CommandContext) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session := newREPLSession(cmdCtx)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile(),
		AutoComplete:    session.completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	if cmdCtx.Cfg.Watch {
		watcher, err := NewWatcher(cmdCtx.Cfg.Data, cmdCtx.Logger, func() {
			session.reload(ctx)
		})
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
		go watcher.Run(ctx)
	}

	out := cmdCtx.Renderer.Out
	_, _ = fmt.Fprintf(out, "madtsql (%d tables from %s)\n", len(cmdCtx.Catalog.Current().Tables()), strings.Join(cmdCtx.Cfg.Data, ", "))
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		quit, pending := session.handleLine(ctx, line)
		if quit {
			return nil
		}
		if pending {
			rl.SetPrompt(continuePrompt)
		} else {
			rl.SetPrompt(prompt)
		}
	}
}

// historyFile returns the per-user history path, or "" for no history.
func historyFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "madtsql")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

// replSession is the line-level state of the shell, independent of the terminal.
type replSession struct {
	cmdCtx    *CommandContext
	completer *tableCompleter
	buf       strings.Builder
}

func newREPLSession(cmdCtx *CommandContext) *replSession {
	s := &replSession{
		cmdCtx:    cmdCtx,
		completer: &tableCompleter{},
	}
	s.completer.update(cmdCtx.Catalog.Current().TableNames())
	return s
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// handleLine consumes one input line. quit asks the loop to stop; pending
// reports an unfinished multi-line statement.
func (s *replSession) handleLine(ctx context.Context, line string) (quit, pending bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, s.buf.Len() > 0
	}

	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(ctx, line), false
	}

	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return false, true
	}

	statement := s.buf.String()
	s.buf.Reset()
	s.execute(ctx, statement)
	return false, false
}

func (s *replSession) execute(ctx context.Context, statement string) {
	r := s.cmdCtx.Renderer
	rs, err := s.cmdCtx.Catalog.Query(ctx, madtsql.QueryRequest{SQL: statement})
	if err != nil {
		_, _ = fmt.Fprintf(r.Err, "Error: %v\n", err)
		return
	}
	if err := r.Result(rs); err != nil {
		_, _ = fmt.Fprintf(r.Err, "Error: %v\n", err)
	}
	_, _ = fmt.Fprintln(r.Out)
}

func (s *replSession) dotCommand(ctx context.Context, line string) (quit bool) {
	r := s.cmdCtx.Renderer
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	var err error
	switch command {
	case ".quit", ".exit":
		return true
	case ".help":
		printREPLHelp(r.Out)
	case ".tables":
		err = listTables(s.cmdCtx)
	case ".schema":
		var listing []madtsql.ColumnSchema
		listing, err = s.cmdCtx.Catalog.Current().Describe(ctx, parts[1:]...)
		if err == nil {
			err = r.Schema(listing)
		}
	case ".reload":
		s.reload(ctx)
	default:
		_, _ = fmt.Fprintf(r.Err, "Unknown command: %s (type .help for commands)\n", command)
	}
	if err != nil {
		_, _ = fmt.Fprintf(r.Err, "Error: %v\n", err)
	}
	return false
}

// reload rebuilds the catalog; queries keep using the previous tables until
// the new ones are ready.
func (s *replSession) reload(ctx context.Context) {
	store, err := s.cmdCtx.Catalog.Reload(ctx)
	if err != nil {
		s.cmdCtx.Logger.Error("reload failed", "error", err)
		return
	}
	s.cmdCtx.Renderer.Report(store.Report())
	s.completer.update(store.TableNames())
	s.cmdCtx.Logger.Info("reloaded", "generation", store.Generation(), "tables", len(store.Tables()))
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .tables           List loaded tables
  .schema [table]   Show columns of one or all tables
  .reload           Load the data files again
  .quit / .exit     Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - Only SELECT and WITH statements are accepted
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(w, help)
}

// tableCompleter completes table names and dot-commands. Its items are
// replaced after every reload.
type tableCompleter struct {
	mu     sync.RWMutex
	prefix *readline.PrefixCompleter
}

func (c *tableCompleter) update(tables []string) {
	items := make([]readline.PrefixCompleterInterface, 0, len(tables)+6)
	for _, name := range tables {
		items = append(items, readline.PcItem(name))
	}
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".reload"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	c.mu.Lock()
	c.prefix = readline.NewPrefixCompleter(items...)
	c.mu.Unlock()
}

// Do implements readline.AutoCompleter.
func (c *tableCompleter) Do(line []rune, pos int) ([][]rune, int) {
	c.mu.RLock()
	prefix := c.prefix
	c.mu.RUnlock()

	if prefix == nil {
		return nil, 0
	}
	return prefix.Do(line, pos)
}
