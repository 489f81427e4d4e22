package madtsql

import (
	"io/fs"
	"log/slog"
	"maps"

	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/ginga924/madt4001-sql/driver"
	"golang.org/x/text/encoding"
)

// Builder collects the sources and options of a load cycle.
// Use NewBuilder to create a new instance, then chain method calls to
// configure it. A configured builder can load any number of times; each
// Load produces a fresh, independent Store.
//
// The typical usage pattern is:
//
//	store, err := madtsql.NewBuilder().
//		AddPath("data").
//		WithOverrides(map[string]string{"2024 Sales.csv": "sales"}).
//		Load(ctx)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	rs, err := store.Query(ctx, madtsql.QueryRequest{SQL: "SELECT * FROM sales"})
type Builder struct {
	paths       []string
	filesystems []fs.FS
	overrides   map[string]string
	logger      *slog.Logger
	typist      *model.ColumnTypist
	gate        *model.QueryGate
	memoryLimit *MemoryLimit
	fallback    encoding.Encoding
	chunkSize   int
	maxRows     int
}

// NewBuilder creates a builder with the default typist, the default query
// gate and a 512 MB memory guard.
func NewBuilder() *Builder {
	return &Builder{
		overrides:   make(map[string]string),
		logger:      slog.New(slog.DiscardHandler),
		typist:      model.NewColumnTypist(),
		gate:        model.NewQueryGate(),
		memoryLimit: NewMemoryLimit(DefaultMemoryLimitMB),
		chunkSize:   driver.DefaultChunkSize,
		maxRows:     model.DefaultMaxRows,
	}
}

// AddPath adds a file or directory path. A directory contributes the
// supported files directly inside it (.csv, .tsv, .xlsx, .parquet, each
// optionally compressed with .gz, .bz2, .xz or .zst).
func (b *Builder) AddPath(path string) *Builder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple file or directory paths.
func (b *Builder) AddPaths(paths ...string) *Builder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddFS adds every supported file of an fs.FS, walked recursively.
func (b *Builder) AddFS(filesystem fs.FS) *Builder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// WithOverrides sets explicit table names keyed by file basename.
func (b *Builder) WithOverrides(overrides map[string]string) *Builder {
	b.overrides = maps.Clone(overrides)
	if b.overrides == nil {
		b.overrides = make(map[string]string)
	}
	return b
}

// WithLogger sets the logger used while loading and querying.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithTypist replaces the column typist.
func (b *Builder) WithTypist(typist *model.ColumnTypist) *Builder {
	if typist != nil {
		b.typist = typist
	}
	return b
}

// WithForbiddenKeywords extends the gate's blacklist, for example with
// model.ExtendedForbiddenKeywords.
func (b *Builder) WithForbiddenKeywords(keywords ...string) *Builder {
	b.gate = model.NewQueryGate(keywords...)
	return b
}

// WithMemoryLimit sets the heap limit checked before each source.
// Zero or a negative value disables the guard.
func (b *Builder) WithMemoryLimit(maxMemoryMB int64) *Builder {
	b.memoryLimit = NewMemoryLimit(maxMemoryMB)
	if maxMemoryMB <= 0 {
		b.memoryLimit.Disable()
	}
	return b
}

// WithFallbackCharset sets the charset tried for text sources that are
// neither UTF-8 nor carry a byte-order mark. See LookupCharset.
func (b *Builder) WithFallbackCharset(enc encoding.Encoding) *Builder {
	b.fallback = enc
	return b
}

// WithChunkSize sets the number of rows inserted per transaction.
func (b *Builder) WithChunkSize(rows int) *Builder {
	if rows > 0 {
		b.chunkSize = rows
	}
	return b
}

// WithMaxRows sets the row cap applied to queries that carry no LIMIT and
// do not set QueryRequest.MaxRows.
func (b *Builder) WithMaxRows(rows int) *Builder {
	if rows > 0 {
		b.maxRows = rows
	}
	return b
}
