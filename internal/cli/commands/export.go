package commands

import (
	"fmt"

	madtsql "github.com/ginga924/madt4001-sql"
	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/spf13/cobra"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Dir      string
	Format   string
	Compress string
	BOM      bool
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every loaded table back out as files",
		Long: `Write each loaded table to <dir>/<table>.<format>[.<compression>].

Delimited and XLSX output is written so that loading it again infers the same
column kinds. Parquet output keeps native column types.`,
		Example: `  madtsql export --dir out
  madtsql export --dir out --format parquet --compress zst`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Output directory (required)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "csv", "File format: csv, tsv, xlsx, parquet")
	cmd.Flags().StringVar(&opts.Compress, "compress", "", "Compression: gz, xz, zst")
	cmd.Flags().BoolVar(&opts.BOM, "bom", false, "Prefix csv/tsv files with a UTF-8 byte-order mark")
	_ = cmd.MarkFlagRequired("dir")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"csv", "tsv", "xlsx", "parquet"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("compress", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"gz", "xz", "zst"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	dumpOpts, err := opts.dumpOptions()
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	store := cmdCtx.Catalog.Current()
	if err := madtsql.Dump(cmd.Context(), store, opts.Dir, dumpOpts); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tables to %s (*%s)\n",
		len(store.Tables()), opts.Dir, dumpOpts.FileExtension())
	return nil
}

func (o *ExportOptions) dumpOptions() (model.DumpOptions, error) {
	format, err := model.ParseOutputFormat(o.Format)
	if err != nil {
		return model.DumpOptions{}, err
	}
	compression, err := model.ParseCompressionType(o.Compress)
	if err != nil {
		return model.DumpOptions{}, err
	}
	return model.NewDumpOptions().
		WithFormat(format).
		WithCompression(compression).
		WithBOM(o.BOM), nil
}
