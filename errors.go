package madtsql

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrNoSources indicates the builder was given nothing to load
	ErrNoSources = errors.New("madtsql: at least one path or filesystem must be provided")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("madtsql: unsupported file format")

	// ErrEmptyData indicates that the data source has no header row
	ErrEmptyData = errors.New("madtsql: empty data source")

	// ErrDecode indicates a source could not be read as text
	ErrDecode = errors.New("madtsql: cannot decode source as text")

	// ErrInvalidUTF8 is the cause of a DecodeError when no fallback applies
	ErrInvalidUTF8 = errors.New("invalid UTF-8 and no byte-order mark")

	// ErrQueryExecution indicates the engine rejected or failed a gated statement
	ErrQueryExecution = errors.New("madtsql: execution error")

	// ErrMemoryLimit indicates memory limit exceeded
	ErrMemoryLimit = errors.New("madtsql: memory limit exceeded")

	// ErrStoreClosed indicates a query against a store that was already closed
	ErrStoreClosed = errors.New("madtsql: store is closed")

	// ErrTableNotFound indicates a lookup of a table the store does not hold
	ErrTableNotFound = errors.New("madtsql: table not found")

	// ErrUnknownCharset indicates an unrecognized fallback charset name
	ErrUnknownCharset = errors.New("madtsql: unknown charset")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	parts := []string{fmt.Sprintf("madtsql: %s failed", ec.Operation)}

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}
	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}
	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	msg := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", msg, baseErr)
	}
	return errors.New(msg)
}

// DecodeError reports a source whose bytes are not text, even after the
// byte-order-mark and charset fallbacks.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDecode.Error(), e.Path, e.Err)
}

// Unwrap lets errors.Is match both ErrDecode and the cause.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// QueryExecutionError carries the engine's own message for a failed statement.
type QueryExecutionError struct {
	SQL string
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap lets errors.Is match both ErrQueryExecution and the engine error.
func (e *QueryExecutionError) Unwrap() []error {
	return []error{ErrQueryExecution, e.Err}
}
