// Command madtsql queries tabular data files with read-only SQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginga924/madt4001-sql/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
