package commands

import (
	"context"
	"log/slog"

	madtsql "github.com/ginga924/madt4001-sql"
	"github.com/ginga924/madt4001-sql/internal/cli/config"
	"github.com/ginga924/madt4001-sql/internal/logging"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Catalog  *madtsql.Catalog
	Renderer *Renderer
}

// NewCommandContext loads the configured data into a catalog.
// Returns the context and a cleanup function that must be called (typically via defer).
// Sources that fail to load are reported as warnings; the command still runs
// against the tables that did load.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutCatalog(cmd)

	builder, err := NewBuilder(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return nil, nil, err
	}

	catalog := madtsql.NewCatalog(builder)
	store, err := catalog.Reload(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	cmdCtx.Renderer.Report(store.Report())
	cmdCtx.Catalog = catalog

	cleanup := func() {
		_ = catalog.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutCatalog creates a CommandContext that loads nothing.
func NewCommandContextWithoutCatalog(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logging.FromContext(ctx),
		Renderer: NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Output),
	}
}

// NewBuilder translates the configuration into a loader builder.
func NewBuilder(cfg *config.Config, logger *slog.Logger) (*madtsql.Builder, error) {
	fallback, err := madtsql.LookupCharset(cfg.FallbackCharset)
	if err != nil {
		return nil, err
	}

	return madtsql.NewBuilder().
		AddPaths(cfg.Data...).
		WithOverrides(cfg.OverrideMap()).
		WithLogger(logger).
		WithForbiddenKeywords(cfg.ForbiddenKeywords...).
		WithMemoryLimit(cfg.MaxMemoryMB).
		WithFallbackCharset(fallback).
		WithChunkSize(cfg.ChunkSize).
		WithMaxRows(cfg.MaxRows), nil
}
