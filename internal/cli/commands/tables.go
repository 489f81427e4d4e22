package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// starterLimit is the LIMIT of the suggested first query.
const starterLimit = 100

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables loaded from the data files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return listTables(cmdCtx)
		},
	}
}

func listTables(cmdCtx *CommandContext) error {
	store := cmdCtx.Catalog.Current()
	tables := store.Tables()
	if len(tables) == 0 {
		cmdCtx.Renderer.Notef("No tables loaded from %v.", cmdCtx.Cfg.Data)
		return nil
	}

	if err := cmdCtx.Renderer.Tables(tables); err != nil {
		return err
	}
	cmdCtx.Renderer.Notef("Try: %s", starterQuery(tables[0].Name))
	return nil
}

// starterQuery suggests a first statement for table.
func starterQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d;", table, starterLimit)
}
