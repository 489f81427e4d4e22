package madtsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/ginga924/madt4001-sql/driver"
	"github.com/google/uuid"
)

// LoadReport summarizes one load cycle.
type LoadReport struct {
	Generation string
	Loaded     int
	// Replaced counts tables overwritten by a later source of the same name
	Replaced int
	Failures []LoadFailure
}

// LoadFailure is a source that was skipped, with the reason.
type LoadFailure struct {
	Path string
	Err  error
}

// Err joins all failures, or returns nil when every source loaded.
func (r LoadReport) Err() error {
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// Load reads every source into a new in-memory Store.
//
// Sources are processed in order. Each one is decompressed, decoded,
// parsed, typed column by column and registered under its resolved table
// name, replacing any table of the same name loaded earlier in the cycle.
// A source that fails is skipped and recorded in the store's LoadReport;
// Load itself fails only when no source was configured, the engine cannot
// be created, or ctx is done.
func (b *Builder) Load(ctx context.Context) (*Store, error) {
	if len(b.paths) == 0 && len(b.filesystems) == 0 {
		return nil, ErrNoSources
	}

	engine, err := driver.Open(ctx, b.chunkSize)
	if err != nil {
		return nil, err
	}

	report := LoadReport{Generation: uuid.NewString()}
	logger := b.logger.With(slog.String("generation", report.Generation))

	sources, collectFailures := b.collectSources()
	for _, f := range collectFailures {
		logger.Warn("skipping source", slog.String("path", f.path), slog.Any("error", f.err))
		report.Failures = append(report.Failures, LoadFailure{Path: f.path, Err: f.err})
	}

	tables := make(map[string]TableInfo)
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(err, engine.Close())
		}

		loaded, err := b.loadSource(ctx, engine, src)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.Join(ctxErr, engine.Close())
			}
			logger.Warn("skipping source", slog.String("path", src.Path), slog.Any("error", err))
			report.Failures = append(report.Failures, LoadFailure{Path: src.Path, Err: err})
		}

		for _, info := range loaded {
			if prev, ok := tables[info.Name]; ok {
				logger.Warn("table replaced by later source",
					slog.String("table", info.Name),
					slog.String("previous", prev.Source),
					slog.String("source", info.Source))
				report.Replaced++
			}
			tables[info.Name] = info
			logger.Debug("table loaded",
				slog.String("table", info.Name),
				slog.Int("rows", info.Rows),
				slog.Any("kinds", info.Kinds))
		}
	}

	// A failed replace drops the earlier table of the same name too.
	present, err := engine.TableNames(ctx)
	if err != nil {
		return nil, errors.Join(err, engine.Close())
	}
	infos := make([]TableInfo, 0, len(present))
	for _, name := range present {
		if info, ok := tables[name]; ok {
			infos = append(infos, info)
		}
	}
	report.Loaded = len(infos)

	logger.Info("load cycle complete",
		slog.Int("tables", report.Loaded),
		slog.Int("failed", len(report.Failures)),
		slog.Int("replaced", report.Replaced))

	return &Store{
		engine:   engine,
		tables:   infos,
		report:   report,
		loadedAt: time.Now(),
		gate:     b.gate,
		maxRows:  b.maxRows,
		logger:   logger,
	}, nil
}

// loadSource reads, types and registers every table of one source. Tables
// registered before a failure are still returned.
func (b *Builder) loadSource(ctx context.Context, engine *driver.Engine, src Source) ([]TableInfo, error) {
	switch b.memoryLimit.CheckMemoryUsage() {
	case MemoryStatusExceeded:
		return nil, b.memoryLimit.CreateMemoryError("loading " + src.Path)
	case MemoryStatusWarning:
		info := b.memoryLimit.GetMemoryInfo()
		b.logger.Warn("memory usage is close to the limit",
			slog.String("path", src.Path),
			slog.Int64("current_mb", info.CurrentMB),
			slog.Int64("limit_mb", info.LimitMB))
	}

	baseName := model.ResolveTableName(src.Name, b.overrides)
	if baseName.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", model.ErrEmptyTableName, src.Path)
	}

	data, err := readSource(src)
	if err != nil {
		return nil, err
	}

	raws, err := parseSource(ctx, src.Path, data, b.fallback)
	if err != nil {
		return nil, err
	}

	infos := make([]TableInfo, 0, len(raws))
	for _, raw := range raws {
		name := baseName
		if raw.sheet != "" {
			name = model.NewTableName(model.SanitizeIdentifier(baseName.String() + "_" + raw.sheet))
		}

		ds, err := model.NewDataset(name, b.typist.ClassifyAll(raw.columns))
		if err != nil {
			return infos, NewErrorContext("build dataset", src.Path).WithTable(name.String()).Error(err)
		}
		if err := engine.ReplaceTable(ctx, ds); err != nil {
			return infos, NewErrorContext("load table", src.Path).WithTable(name.String()).Error(err)
		}

		infos = append(infos, TableInfo{
			Name:    name.String(),
			Group:   src.Group,
			Source:  src.Path,
			Rows:    ds.RowCount(),
			Columns: ds.ColumnCount(),
			Kinds:   ds.Kinds(),
		})
	}
	return infos, nil
}

func readSource(src Source) ([]byte, error) {
	file, err := src.open()
	if err != nil {
		return nil, NewErrorContext("open", src.Path).Error(err)
	}

	data, err := decompressAll(src.Path, file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, NewErrorContext("read", src.Path).Error(err)
	}
	return data, nil
}
