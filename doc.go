// Package madtsql loads loosely structured tabular files into an in-memory
// SQLite database and runs screened, read-only queries against them.
//
// Every column of a source arrives as text and is typed heuristically: a
// column becomes integer or float, temporal, or boolean when at least 90% of
// its cells parse under that rule (tried in that order), and stays text
// otherwise. Cells that fail the accepted rule become NULL.
//
// # Features
//
//   - CSV, TSV, Excel (XLSX, one table per sheet) and Parquet sources
//   - Compressed sources (gzip, bzip2, xz, zstandard)
//   - Files, directories and fs.FS inputs
//   - Table names derived from file names, with explicit overrides
//   - Build-then-swap reloads through Catalog
//   - Export to CSV, TSV, XLSX or Parquet
//
// # Basic Usage
//
//	store, err := madtsql.NewBuilder().AddPath("data").Load(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	rs, err := store.Query(ctx, madtsql.QueryRequest{SQL: "SELECT * FROM sales"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(rs.Caption())
//
// # Query screening
//
// Statements go through a lexical gate before execution. Only statements
// starting with SELECT or WITH pass, and none may contain a blacklisted
// keyword (INSERT, UPDATE, DELETE, DROP, ALTER, CREATE, REPLACE, TRUNCATE,
// ATTACH, DETACH, VACUUM, PRAGMA, plus any configured extras) as a whole
// word. The gate does not parse SQL: a keyword inside a string literal or
// a comment is rejected as well, and mutating constructs the blacklist does
// not name are not caught. A statement without LIMIT <n> is wrapped as
//
//	SELECT * FROM (<statement>) AS bounded LIMIT <max rows>
//
// # Table names
//
// An override keyed by the file's basename is used verbatim. Otherwise the
// compression and format extensions are stripped, characters outside
// [A-Za-z0-9_] become underscores, the name is lowercased and a leading
// digit gets an underscore prefix. Two sources resolving to the same name
// replace each other in load order; the later one wins.
//
// Numeric-looking identifiers such as zero-padded codes are typed as
// numbers when they pass the 90% rule, and lose their leading zeros.
package madtsql
