package model

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")
	// ErrEmptyTableName is returned when a source resolves to an empty table name
	ErrEmptyTableName = errors.New("empty table name")
	// ErrNoColumns is returned when a dataset would have no columns
	ErrNoColumns = errors.New("no columns")
	// ErrColumnLengthMismatch is returned when columns of one dataset differ in length
	ErrColumnLengthMismatch = errors.New("column length mismatch")

	// ErrNotReadOnly is the rule class of NotReadOnlyError
	ErrNotReadOnly = errors.New("only SELECT / WITH statements are allowed")
	// ErrForbiddenKeyword is the rule class of ForbiddenKeywordError
	ErrForbiddenKeyword = errors.New("statement contains a forbidden keyword")
)

// NotReadOnlyError reports a statement that does not start with SELECT or WITH.
type NotReadOnlyError struct {
	Statement string
}

func (e *NotReadOnlyError) Error() string {
	return ErrNotReadOnly.Error()
}

func (e *NotReadOnlyError) Unwrap() error {
	return ErrNotReadOnly
}

// ForbiddenKeywordError reports a blacklisted keyword found in a statement.
type ForbiddenKeywordError struct {
	Keyword   string
	Statement string
}

func (e *ForbiddenKeywordError) Error() string {
	return fmt.Sprintf("%s: %s (only read-only SELECT / WITH statements are allowed)", ErrForbiddenKeyword, e.Keyword)
}

func (e *ForbiddenKeywordError) Unwrap() error {
	return ErrForbiddenKeyword
}
