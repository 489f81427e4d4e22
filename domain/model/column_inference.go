package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// AcceptanceThreshold is the minimum non-null ratio a cast rule must reach.
const AcceptanceThreshold = 0.90

// numericPattern accepts plain decimal notation with an optional exponent.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Boolean lexicon, matched after trimming and lowercasing
var (
	trueWords  = map[string]struct{}{"true": {}, "t": {}, "yes": {}, "y": {}, "1": {}}
	falseWords = map[string]struct{}{"false": {}, "f": {}, "no": {}, "n": {}, "0": {}}
)

// CastRule converts the cells of a column to one kind.
type CastRule struct {
	// Kind is the kind produced when the rule is accepted and Settle is nil.
	Kind ColumnKind
	// Cast converts one cell; ok is false when the cell becomes null.
	Cast func(cell string) (value any, ok bool)
	// Settle optionally picks the final kind and normalizes the values.
	Settle func(values []any) (ColumnKind, []any)
}

// Apply casts every cell and reports whether the non-null ratio reached threshold.
// An empty column has a ratio of 0.
func (r CastRule) Apply(cells []string, threshold float64) (ColumnKind, []any, bool) {
	if len(cells) == 0 {
		return KindText, nil, false
	}

	values := make([]any, len(cells))
	converted := 0
	for i, cell := range cells {
		v, ok := r.Cast(cell)
		if !ok {
			continue
		}
		values[i] = v
		converted++
	}

	if float64(converted)/float64(len(cells)) < threshold {
		return KindText, nil, false
	}
	if r.Settle != nil {
		kind, settled := r.Settle(values)
		return kind, settled, true
	}
	return r.Kind, values, true
}

// Default cast rules in evaluation order
var (
	// NumericRule parses numbers; the column is integer when every value is integral.
	NumericRule = CastRule{Kind: KindFloat, Cast: castNumber, Settle: settleNumeric}
	// TemporalRule parses dates and times against the known layouts.
	TemporalRule = CastRule{Kind: KindTemporal, Cast: castTemporal}
	// BooleanRule maps the boolean lexicon.
	BooleanRule = CastRule{Kind: KindBoolean, Cast: castBoolean}
)

// ColumnTypist classifies raw columns by running an ordered rule chain.
// The first rule whose non-null ratio reaches the threshold wins; when none
// does, the column stays text with its cells untouched.
type ColumnTypist struct {
	rules     []CastRule
	threshold float64
}

// NewColumnTypist returns a typist with the numeric, temporal, boolean chain.
func NewColumnTypist() *ColumnTypist {
	return &ColumnTypist{
		rules:     []CastRule{NumericRule, TemporalRule, BooleanRule},
		threshold: AcceptanceThreshold,
	}
}

// NewColumnTypistWithRules returns a typist with a custom chain and threshold.
func NewColumnTypistWithRules(threshold float64, rules ...CastRule) *ColumnTypist {
	return &ColumnTypist{rules: rules, threshold: threshold}
}

// ClassifyAndCast returns the typed column for raw. It never fails.
func (t *ColumnTypist) ClassifyAndCast(raw RawColumn) Column {
	if raw.Kind.IsTyped() {
		return Column{Name: raw.Name, Kind: raw.Kind, Values: raw.Values}
	}

	for _, rule := range t.rules {
		if kind, values, ok := rule.Apply(raw.Cells, t.threshold); ok {
			return Column{Name: raw.Name, Kind: kind, Values: values}
		}
	}

	values := make([]any, len(raw.Cells))
	for i, cell := range raw.Cells {
		values[i] = cell
	}
	return Column{Name: raw.Name, Kind: KindText, Values: values}
}

// ClassifyAll types every column of a table.
func (t *ColumnTypist) ClassifyAll(raws []RawColumn) []Column {
	columns := make([]Column, len(raws))
	for i, raw := range raws {
		columns[i] = t.ClassifyAndCast(raw)
	}
	return columns
}

// exponentFloat marks a number written in exponent notation. Such a cell
// never counts as an integer, so it keeps its column float.
type exponentFloat float64

// castNumber yields int64 for integer notation, exponentFloat for exponent
// notation and float64 otherwise.
func castNumber(cell string) (any, bool) {
	cell = strings.TrimSpace(cell)
	if !numericPattern.MatchString(cell) {
		return nil, false
	}
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, false
	}
	if strings.ContainsAny(cell, "eE") {
		return exponentFloat(f), true
	}
	return f, true
}

// FormatFloat renders f so that castNumber reads it back as a float.
// Whole values use exponent notation (10 becomes "1e+01") since plain
// notation such as "10.0" settles as an integer.
func FormatFloat(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// settleNumeric decides between integer and float.
// Integral floats outside the int64 range keep the column float.
func settleNumeric(values []any) (ColumnKind, []any) {
	integral := true
	for _, v := range values {
		switch n := v.(type) {
		case exponentFloat:
			integral = false
		case float64:
			if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
				integral = false
			}
		}
		if !integral {
			break
		}
	}

	out := make([]any, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case int64:
			if integral {
				out[i] = n
			} else {
				out[i] = float64(n)
			}
		case float64:
			if integral {
				out[i] = int64(n)
			} else {
				out[i] = n
			}
		case exponentFloat:
			out[i] = float64(n)
		}
	}
	if integral {
		return KindInteger, out
	}
	return KindFloat, out
}

func castTemporal(cell string) (any, bool) {
	t, ok := ParseTemporal(cell)
	if !ok {
		return nil, false
	}
	return t, true
}

func castBoolean(cell string) (any, bool) {
	b, ok := ParseBool(cell)
	if !ok {
		return nil, false
	}
	return b, true
}

// ParseBool maps a cell through the boolean lexicon.
func ParseBool(cell string) (value, ok bool) {
	word := strings.ToLower(strings.TrimSpace(cell))
	if _, found := trueWords[word]; found {
		return true, true
	}
	if _, found := falseWords[word]; found {
		return false, true
	}
	return false, false
}
