package madtsql

import (
	"context"
	"sort"

	"github.com/ginga924/madt4001-sql/driver"
)

// ColumnSchema is one (table, column, type, primary key) entry of the
// schema listing.
type ColumnSchema struct {
	Table      string
	Column     string
	Type       string
	PrimaryKey int
}

// Describe lists the columns of the given tables, or of every loaded table
// when none are named. Names missing from the catalog are skipped. The
// result is sorted by table, primary-key flag and column name.
func (s *Store) Describe(ctx context.Context, tables ...string) ([]ColumnSchema, error) {
	if len(tables) == 0 {
		tables = s.TableNames()
	}

	var listing []ColumnSchema
	err := s.withEngine(func(engine *driver.Engine) error {
		for _, table := range tables {
			columns, ok, err := engine.TableInfo(ctx, table)
			if err != nil {
				return NewErrorContext("describe", "").WithTable(table).Error(err)
			}
			if !ok {
				s.logger.Debug("describe: table not in catalog", "table", table)
				continue
			}
			for _, col := range columns {
				listing = append(listing, ColumnSchema{
					Table:      table,
					Column:     col.Name,
					Type:       col.Type,
					PrimaryKey: col.PrimaryKey,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(listing, func(i, j int) bool {
		a, b := listing[i], listing[j]
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		if a.PrimaryKey != b.PrimaryKey {
			return a.PrimaryKey < b.PrimaryKey
		}
		return a.Column < b.Column
	})
	return listing, nil
}
