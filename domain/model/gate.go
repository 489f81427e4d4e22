package model

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMaxRows is the row cap applied when a statement has no LIMIT.
const DefaultMaxRows = 5000

// boundedAlias names the sub-query wrapping an unbounded statement.
const boundedAlias = "bounded"

// DefaultForbiddenKeywords are rejected anywhere in a statement as whole words.
var DefaultForbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "REPLACE",
	"TRUNCATE", "ATTACH", "DETACH", "VACUUM", "PRAGMA",
}

// ExtendedForbiddenKeywords covers engines that support COPY and CALL.
var ExtendedForbiddenKeywords = []string{"COPY", "CALL"}

var (
	readOnlyPrefix = regexp.MustCompile(`(?i)^(SELECT|WITH)\b`)
	limitClause    = regexp.MustCompile(`(?i)\bLIMIT\s+\d+\b`)
)

// QueryGate screens SQL text lexically. It does not parse SQL: keywords
// inside string literals or comments are rejected too, and a LIMIT found
// anywhere (a sub-query included) counts as the caller's own limit.
type QueryGate struct {
	keywords  []string
	forbidden *regexp.Regexp
}

// NewQueryGate returns a gate rejecting DefaultForbiddenKeywords plus extra.
func NewQueryGate(extra ...string) *QueryGate {
	seen := make(map[string]struct{})
	keywords := make([]string, 0, len(DefaultForbiddenKeywords)+len(extra))
	for _, kw := range append(append([]string{}, DefaultForbiddenKeywords...), extra...) {
		kw = strings.ToUpper(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}

	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}

	return &QueryGate{
		keywords:  keywords,
		forbidden: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Keywords returns the forbidden keywords, upper-cased.
func (g *QueryGate) Keywords() []string {
	return append([]string(nil), g.keywords...)
}

// NormalizeStatement trims whitespace and a single trailing ';'.
func NormalizeStatement(sql string) string {
	stmt := strings.TrimSpace(sql)
	stmt = strings.TrimSuffix(stmt, ";")
	return strings.TrimSpace(stmt)
}

// Validate checks the statement shape and blacklist and returns the normalized statement.
// A statement failing both checks, such as DROP TABLE x, is reported as a
// ForbiddenKeywordError; NotReadOnlyError is left for statements that name
// no forbidden keyword.
func (g *QueryGate) Validate(sql string) (string, error) {
	stmt := NormalizeStatement(sql)
	if kw := g.forbidden.FindString(stmt); kw != "" {
		return "", &ForbiddenKeywordError{Keyword: strings.ToUpper(kw), Statement: stmt}
	}
	if !readOnlyPrefix.MatchString(stmt) {
		return "", &NotReadOnlyError{Statement: stmt}
	}
	return stmt, nil
}

// ValidateAndLimit validates sql and caps its row count.
//
// A statement that already carries LIMIT <n> is returned as is; otherwise it
// is wrapped as SELECT * FROM (<sql>) AS bounded LIMIT <maxRows>.
// A non-positive maxRows means DefaultMaxRows.
func (g *QueryGate) ValidateAndLimit(sql string, maxRows int) (string, error) {
	stmt, err := g.Validate(sql)
	if err != nil {
		return "", err
	}
	if limitClause.MatchString(stmt) {
		return stmt, nil
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	// A trailing line comment would swallow the closing parenthesis.
	if strings.Contains(stmt, "--") {
		return fmt.Sprintf("SELECT * FROM (%s\n) AS %s LIMIT %d", stmt, boundedAlias, maxRows), nil
	}
	return fmt.Sprintf("SELECT * FROM (%s) AS %s LIMIT %d", stmt, boundedAlias, maxRows), nil
}
