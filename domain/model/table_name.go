// Package model provides the domain model for madtsql: table naming,
// column typing, datasets and read-only query screening.
package model

import (
	"path/filepath"
	"strings"
)

// Character validation constants
const (
	firstDigitChar = '0'
	lastDigitChar  = '9'
	firstLowerChar = 'a'
	lastLowerChar  = 'z'
	firstUpperChar = 'A'
	lastUpperChar  = 'Z'
	underscoreChar = '_'
)

// TableName represents a canonical relational identifier
type TableName struct {
	value string
}

// NewTableName wraps name without any normalization.
func NewTableName(name string) TableName {
	return TableName{value: name}
}

// ResolveTableName turns a file basename into a table name.
//
// An entry in overrides keyed by basename wins and is returned verbatim.
// Otherwise the extension is stripped, every character outside [A-Za-z0-9_]
// becomes an underscore, the result is lowercased and a leading digit is
// prefixed with an underscore:
//
//	ResolveTableName("1abc.csv", nil)     // _1abc
//	ResolveTableName("My File!.csv", nil) // my_file_
func ResolveTableName(basename string, overrides map[string]string) TableName {
	if name, ok := overrides[basename]; ok {
		return TableName{value: name}
	}
	return TableName{value: SanitizeIdentifier(StripExtensions(basename))}
}

// StripExtensions removes a compression suffix (if any) and then the format extension.
func StripExtensions(basename string) string {
	name := basename
	lower := strings.ToLower(name)
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// SanitizeIdentifier maps name onto the [a-z0-9_] alphabet.
// The result is empty only when name is empty.
func SanitizeIdentifier(name string) string {
	var sanitized strings.Builder
	sanitized.Grow(len(name) + 1)
	for _, r := range name {
		if isIdentifierRune(r) {
			sanitized.WriteRune(r)
			continue
		}
		sanitized.WriteRune(underscoreChar)
	}

	result := strings.ToLower(sanitized.String())
	if result != "" && result[0] >= firstDigitChar && result[0] <= lastDigitChar {
		result = string(underscoreChar) + result
	}
	return result
}

func isIdentifierRune(r rune) bool {
	return (r >= firstLowerChar && r <= lastLowerChar) ||
		(r >= firstUpperChar && r <= lastUpperChar) ||
		(r >= firstDigitChar && r <= lastDigitChar) ||
		r == underscoreChar
}

// String returns the string representation of TableName
func (tn TableName) String() string {
	return tn.value
}

// Equal compares two table names
func (tn TableName) Equal(other TableName) bool {
	return tn.value == other.value
}

// IsEmpty reports whether the name has no characters.
func (tn TableName) IsEmpty() bool {
	return tn.value == ""
}

// Quoted returns the name as a double-quoted SQL identifier.
func (tn TableName) Quoted() string {
	return QuoteIdentifier(tn.value)
}

// QuoteIdentifier double-quotes an SQL identifier, doubling embedded quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
