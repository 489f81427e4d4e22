package model

import (
	"fmt"
	"strings"
)

// Dataset is an ordered set of typed columns of equal length bound to a table name.
type Dataset struct {
	name    TableName
	columns []Column
	rows    int
}

// NewDataset validates the columns and creates a Dataset.
func NewDataset(name TableName, columns []Column) (*Dataset, error) {
	if name.IsEmpty() {
		return nil, ErrEmptyTableName
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table %s", ErrNoColumns, name)
	}

	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	if err := ValidateColumnNames(names); err != nil {
		return nil, err
	}

	rows := columns[0].Len()
	for _, col := range columns[1:] {
		if col.Len() != rows {
			return nil, fmt.Errorf("%w: column %q has %d cells, expected %d",
				ErrColumnLengthMismatch, col.Name, col.Len(), rows)
		}
	}

	return &Dataset{name: name, columns: columns, rows: rows}, nil
}

// Name returns the table name.
func (d *Dataset) Name() TableName {
	return d.name
}

// Columns returns the typed columns in order.
func (d *Dataset) Columns() []Column {
	return d.columns
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Kinds returns the column kinds in order.
func (d *Dataset) Kinds() []ColumnKind {
	kinds := make([]ColumnKind, len(d.columns))
	for i, col := range d.columns {
		kinds[i] = col.Kind
	}
	return kinds
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	return d.rows
}

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int {
	return len(d.columns)
}

// Row returns the values of row i across all columns.
func (d *Dataset) Row(i int) []any {
	row := make([]any, len(d.columns))
	for j, col := range d.columns {
		row[j] = col.Values[i]
	}
	return row
}

// ValidateColumnNames rejects header names that collide once trimmed and
// case-folded, since SQL identifiers compare case-insensitively.
func ValidateColumnNames(columns []string) error {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, exists := seen[key]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, col)
		}
		seen[key] = struct{}{}
	}
	return nil
}
