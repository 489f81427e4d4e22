package model

// ColumnKind is the inferred kind of a column.
type ColumnKind int

const (
	// KindText is an untyped column holding the original strings
	KindText ColumnKind = iota
	// KindInteger is a nullable integer column (int64 values)
	KindInteger
	// KindFloat is a nullable floating point column (float64 values)
	KindFloat
	// KindTemporal is a nullable date/time column (time.Time values)
	KindTemporal
	// KindBoolean is a nullable boolean column (bool values)
	KindBoolean
)

// SQL type labels declared in the store for each kind
const (
	sqlTypeText      = "TEXT"
	sqlTypeInteger   = "INTEGER"
	sqlTypeReal      = "REAL"
	sqlTypeTimestamp = "TIMESTAMP"
	sqlTypeBoolean   = "BOOLEAN"
)

// String returns the lowercase kind name.
func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindTemporal:
		return "temporal"
	case KindBoolean:
		return "boolean"
	default:
		return "text"
	}
}

// SQLType returns the column type declared in CREATE TABLE.
func (k ColumnKind) SQLType() string {
	switch k {
	case KindInteger:
		return sqlTypeInteger
	case KindFloat:
		return sqlTypeReal
	case KindTemporal:
		return sqlTypeTimestamp
	case KindBoolean:
		return sqlTypeBoolean
	default:
		return sqlTypeText
	}
}

// IsTyped reports whether the kind is anything but text.
func (k ColumnKind) IsTyped() bool {
	return k != KindText
}

// RawColumn is a column as handed over by a source reader.
//
// Text readers fill Cells. Readers that already know the type of a column
// (Parquet, for instance) set Kind and Values instead; such columns are kept
// unchanged by the typist.
type RawColumn struct {
	Name   string
	Cells  []string
	Kind   ColumnKind
	Values []any
}

// NewRawColumn creates an untyped column from text cells.
func NewRawColumn(name string, cells []string) RawColumn {
	return RawColumn{Name: name, Cells: cells, Kind: KindText}
}

// NewTypedColumn creates a column whose values are already typed.
func NewTypedColumn(name string, kind ColumnKind, values []any) RawColumn {
	return RawColumn{Name: name, Kind: kind, Values: values}
}

// Len returns the number of cells.
func (c RawColumn) Len() int {
	if c.Kind.IsTyped() {
		return len(c.Values)
	}
	return len(c.Cells)
}

// Column is a named, typed sequence of values. Null cells are nil.
//
// Non-null values are int64 for KindInteger, float64 for KindFloat,
// time.Time for KindTemporal, bool for KindBoolean and string for KindText.
type Column struct {
	Name   string
	Kind   ColumnKind
	Values []any
}

// Len returns the number of cells.
func (c Column) Len() int {
	return len(c.Values)
}

// NullCount returns the number of nil cells.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}
	return n
}
