package driver

import (
	"strings"
)

// MaxColumnCount defines the maximum number of columns allowed in a table
const MaxColumnCount = 2000

// ValidatePath rejects empty paths and NUL byte injection
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrInvalidPath
	}
	if strings.Contains(path, "\x00") {
		return ErrInvalidPath
	}
	return nil
}

// ValidateColumnCount checks if the number of columns is within acceptable limits
func ValidateColumnCount(columnCount int) error {
	if columnCount > MaxColumnCount {
		return ErrTooManyColumns
	}
	return nil
}

// ValidateFieldValue removes NUL bytes, which SQLite text cannot carry through
// the C string boundary.
func ValidateFieldValue(value string) string {
	if !strings.Contains(value, "\x00") {
		return value
	}
	return strings.ReplaceAll(value, "\x00", "")
}

// IsValidFileName checks if a directory entry should be loaded
func IsValidFileName(fileName string) bool {
	// Skip hidden files and editor lock files
	if strings.HasPrefix(fileName, ".") || strings.HasPrefix(fileName, "~$") {
		return false
	}
	return !strings.Contains(fileName, "\x00")
}
