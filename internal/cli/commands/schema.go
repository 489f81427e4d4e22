package commands

import (
	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table...]",
		Short: "Show the columns of the loaded tables",
		Long: `Show (table, column, type, pk) for the named tables, or for every
loaded table when none is named. Unknown table names are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return showSchema(cmd, cmdCtx, args)
		},
	}
}

func showSchema(cmd *cobra.Command, cmdCtx *CommandContext, tables []string) error {
	listing, err := cmdCtx.Catalog.Current().Describe(cmd.Context(), tables...)
	if err != nil {
		return err
	}
	if len(listing) == 0 {
		cmdCtx.Renderer.Notef("No matching tables.")
		return nil
	}
	return cmdCtx.Renderer.Schema(listing)
}
