package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// configKey is used to store config in context.
type configKey struct{}

// listKeys are comma separated when they come from the environment.
var listKeys = map[string]struct{}{
	"data":               {},
	"forbidden_keywords": {},
}

// configFileNames are looked up in the working directory when no file is given.
var configFileNames = []string{"madtsql.yaml", "madtsql.yml"}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: ./madtsql.yaml)")
	fs.StringSliceP("data", "d", nil, "data files or directories to load")
	fs.Int("max-rows", model.DefaultMaxRows, "row cap for queries without a LIMIT")
	fs.StringP("output", "o", "", "output format (table|csv|json|markdown)")
	fs.String("fallback-charset", "", "charset tried for text files that are not UTF-8 (e.g. windows-1252)")
	fs.Int64("max-memory-mb", DefaultMaxMemoryMB, "heap limit checked before each source (0 disables)")
	fs.Int("chunk-size", DefaultChunkSize, "rows inserted per transaction")
	fs.Bool("watch", false, "reload when the data directories change (repl only)")
	fs.String("log-level", "", "log level (debug|info|warn|error)")
	fs.String("log-format", "", "log format (text|json)")
}

// findConfigFile returns the explicit path, or the first default name present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads the configuration.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"data":               []string{DefaultDataDir},
		"max_rows":           model.DefaultMaxRows,
		"forbidden_keywords": append([]string(nil), model.ExtendedForbiddenKeywords...),
		"max_memory_mb":      DefaultMaxMemoryMB,
		"chunk_size":         DefaultChunkSize,
		"output":             DefaultOutput,
		"watch":              false,
		"log.level":          DefaultLogLevel,
		"log.format":         DefaultLogFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables: MADTSQL_MAX_ROWS -> max_rows, MADTSQL_LOG_LEVEL -> log.level
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = envKey(key)
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only the ones set explicitly
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	// Relative data paths in a config file are relative to that file.
	if used != "" && !dataFromOutside(flags) {
		base := filepath.Dir(used)
		for i, p := range cfg.Data {
			if p != "" && !filepath.IsAbs(p) {
				cfg.Data[i] = filepath.Join(base, p)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// dataFromOutside reports whether the data paths were given on the command
// line or in the environment rather than by the config file.
func dataFromOutside(flags *pflag.FlagSet) bool {
	if flags != nil && flags.Changed("data") {
		return true
	}
	_, ok := os.LookupEnv(EnvPrefix + "DATA")
	return ok
}

func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

func flagKey(name string) string {
	if rest, ok := strings.CutPrefix(name, "log-"); ok {
		return "log." + rest
	}
	return strings.ReplaceAll(name, "-", "_")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NewContext returns a copy of ctx carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config stored by NewContext, or the defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return Default()
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		Data:              []string{DefaultDataDir},
		MaxRows:           model.DefaultMaxRows,
		ForbiddenKeywords: append([]string(nil), model.ExtendedForbiddenKeywords...),
		MaxMemoryMB:       DefaultMaxMemoryMB,
		ChunkSize:         DefaultChunkSize,
		Output:            DefaultOutput,
		Log:               LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}
