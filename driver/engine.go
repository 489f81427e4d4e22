package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginga924/madt4001-sql/domain/model"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// SQLiteDriverName is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriverName = "sqlite"

// DefaultChunkSize is the default number of rows inserted per transaction
const DefaultChunkSize = 1000

// Engine is an in-memory SQLite database holding one generation of tables.
//
// Every connection to ":memory:" opens a distinct database, so the pool is
// pinned to a single connection. Callers must drain result rows before
// issuing the next statement.
type Engine struct {
	db        *sql.DB
	chunkSize int
}

// ColumnInfo is one row of the engine catalog for a table.
type ColumnInfo struct {
	Name       string
	Type       string
	PrimaryKey int
}

// Open creates an empty in-memory engine.
func Open(ctx context.Context, chunkSize int) (*Engine, error) {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}

	db, err := sql.Open(SQLiteDriverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineOpen, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("%w: %w", ErrEngineOpen, err), db.Close())
	}
	return &Engine{db: db, chunkSize: chunkSize}, nil
}

// Close releases the database. Statements already running finish first.
func (e *Engine) Close() error {
	return e.db.Close()
}

// ReplaceTable drops any table with the dataset's name and loads the dataset
// in its place. Rows are inserted in chunks of the engine's chunk size.
func (e *Engine) ReplaceTable(ctx context.Context, ds *model.Dataset) error {
	if ds == nil {
		return ErrNilDataset
	}
	if err := ValidateColumnCount(ds.ColumnCount()); err != nil {
		return err
	}

	table := ds.Name().Quoted()
	if err := e.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, buildCreateTableQuery(ds))
		return err
	}); err != nil {
		return fmt.Errorf("failed to create table %s: %w", ds.Name(), err)
	}

	if err := e.insertRows(ctx, ds); err != nil {
		_, dropErr := e.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)
		return errors.Join(fmt.Errorf("failed to insert into %s: %w", ds.Name(), err), dropErr)
	}
	return nil
}

// buildCreateTableQuery constructs a CREATE TABLE query declaring each column's kind
func buildCreateTableQuery(ds *model.Dataset) string {
	columns := make([]string, 0, ds.ColumnCount())
	for _, col := range ds.Columns() {
		columns = append(columns, model.QuoteIdentifier(col.Name)+" "+col.Kind.SQLType())
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", ds.Name().Quoted(), strings.Join(columns, ", "))
}

// buildInsertQuery constructs an INSERT query for the dataset
func buildInsertQuery(ds *model.Dataset) string {
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", ds.Name().Quoted(), buildPlaceholders(ds.ColumnCount()))
}

// buildPlaceholders creates placeholder string for prepared statements
func buildPlaceholders(count int) string {
	if count == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}

func (e *Engine) insertRows(ctx context.Context, ds *model.Dataset) error {
	query := buildInsertQuery(ds)
	for start := 0; start < ds.RowCount(); start += e.chunkSize {
		end := min(start+e.chunkSize, ds.RowCount())
		err := e.inTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx, query)
			if err != nil {
				return err
			}
			defer stmt.Close()

			for i := start; i < end; i++ {
				if _, err := stmt.ExecContext(ctx, toDriverValues(ds.Row(i))...); err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// toDriverValues converts typed cells to values SQLite stores natively.
func toDriverValues(row []any) []any {
	args := make([]any, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case nil:
			args[i] = nil
		case bool:
			if val {
				args[i] = int64(1)
			} else {
				args[i] = int64(0)
			}
		case time.Time:
			args[i] = model.FormatTemporal(val)
		case string:
			args[i] = ValidateFieldValue(val)
		default:
			args[i] = val
		}
	}
	return args
}

func (e *Engine) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	return tx.Commit()
}

// TableNames retrieves all user-defined table names, sorted.
func (e *Engine) TableNames(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// TableInfo returns the catalog entries of table in column order.
// ok is false when the table does not exist.
func (e *Engine) TableInfo(ctx context.Context, table string) (columns []ColumnInfo, ok bool, err error) {
	rows, err := e.db.QueryContext(ctx, "SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	for rows.Next() {
		var info ColumnInfo
		if err := rows.Scan(&info.Name, &info.Type, &info.PrimaryKey); err != nil {
			return nil, false, err
		}
		columns = append(columns, info)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return columns, len(columns) > 0, nil
}

// Query runs a statement and collects the full result. []byte cells are
// returned as strings.
func (e *Engine) Query(ctx context.Context, query string) (columns []string, records [][]any, err error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err = rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		records = append(records, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, records, nil
}
