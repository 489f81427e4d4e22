// Package driver adapts an in-memory SQLite database (modernc.org/sqlite) to
// the needs of madtsql: replace-table loads of typed datasets, catalog
// lookups and collection of query results.
package driver
