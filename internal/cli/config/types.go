// Package config provides configuration management for the madtsql CLI.
package config

// Defaults applied before any file, environment variable or flag.
const (
	DefaultDataDir     = "data"
	DefaultOutput      = OutputTable
	DefaultMaxMemoryMB = 512
	DefaultChunkSize   = 1000
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// Output formats for query results and listings.
const (
	OutputTable    = "table"
	OutputCSV      = "csv"
	OutputJSON     = "json"
	OutputMarkdown = "markdown"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MADTSQL_"

// Config holds all CLI configuration options.
type Config struct {
	Data              []string   `koanf:"data"`
	Overrides         []Override `koanf:"overrides"`
	MaxRows           int        `koanf:"max_rows"`
	ForbiddenKeywords []string   `koanf:"forbidden_keywords"`
	FallbackCharset   string     `koanf:"fallback_charset"`
	MaxMemoryMB       int64      `koanf:"max_memory_mb"`
	ChunkSize         int        `koanf:"chunk_size"`
	Output            string     `koanf:"output"`
	Watch             bool       `koanf:"watch"`
	Log               LogConfig  `koanf:"log"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Override names the table loaded from one file. It is a list entry rather
// than a map key because file names contain the key delimiter.
type Override struct {
	File  string `koanf:"file"`
	Table string `koanf:"table"`
}

// OverrideMap returns the overrides keyed by file basename.
func (c *Config) OverrideMap() map[string]string {
	m := make(map[string]string, len(c.Overrides))
	for _, o := range c.Overrides {
		m[o.File] = o.Table
	}
	return m
}
