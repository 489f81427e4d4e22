package config

import (
	"errors"
	"fmt"
	"strings"

	madtsql "github.com/ginga924/madt4001-sql"
	"github.com/ginga924/madt4001-sql/internal/logging"
)

// ErrInvalidConfig is the class of every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.Data) == 0 {
		return fmt.Errorf("%w: at least one data path is required", ErrInvalidConfig)
	}
	for i, o := range c.Overrides {
		if o.File == "" || o.Table == "" {
			return fmt.Errorf("%w: overrides[%d] needs both file and table", ErrInvalidConfig, i)
		}
	}
	if c.MaxRows <= 0 {
		return fmt.Errorf("%w: max_rows must be positive, got %d", ErrInvalidConfig, c.MaxRows)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if !ValidOutput(c.Output) {
		return fmt.Errorf("%w: unknown output format %q (table|csv|json|markdown)", ErrInvalidConfig, c.Output)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("%w: unknown log format %q (text|json)", ErrInvalidConfig, c.Log.Format)
	}
	if _, err := madtsql.LookupCharset(c.FallbackCharset); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ValidOutput reports whether format is a known output format.
func ValidOutput(format string) bool {
	switch strings.ToLower(format) {
	case OutputTable, OutputCSV, OutputJSON, OutputMarkdown, "md":
		return true
	default:
		return false
	}
}
