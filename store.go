package madtsql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ginga924/madt4001-sql/domain/model"
	"github.com/ginga924/madt4001-sql/driver"
)

// TableInfo describes a loaded table.
type TableInfo struct {
	Name    string
	Group   string
	Source  string
	Rows    int
	Columns int
	Kinds   []model.ColumnKind
}

// Store is the immutable result of one load cycle: an in-memory relational
// database plus what is known about its tables. It is safe for concurrent
// queries. Close waits for running queries; later ones fail with
// ErrStoreClosed.
type Store struct {
	engine   *driver.Engine
	tables   []TableInfo
	report   LoadReport
	loadedAt time.Time
	gate     *model.QueryGate
	maxRows  int
	logger   *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// Tables returns the loaded tables sorted by name.
func (s *Store) Tables() []TableInfo {
	return append([]TableInfo(nil), s.tables...)
}

// TableNames returns the loaded table names, sorted.
func (s *Store) TableNames() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.Name
	}
	return names
}

// Table looks up one table by name.
func (s *Store) Table(name string) (TableInfo, bool) {
	for _, t := range s.tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableInfo{}, false
}

// Generation returns the unique id of the load cycle.
func (s *Store) Generation() string {
	return s.report.Generation
}

// LoadedAt returns when the load cycle finished.
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}

// Report returns the load summary, including skipped sources.
func (s *Store) Report() LoadReport {
	return s.report
}

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.engine.Close()
}

// withEngine runs fn while holding the store open.
func (s *Store) withEngine(fn func(*driver.Engine) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}
	return fn(s.engine)
}

// Dataset reads a table back out of the store with the kinds it was
// loaded with.
func (s *Store) Dataset(ctx context.Context, name string) (*model.Dataset, error) {
	info, ok := s.Table(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	var (
		names   []string
		records [][]any
	)
	err := s.withEngine(func(engine *driver.Engine) error {
		var err error
		names, records, err = engine.Query(ctx, "SELECT * FROM "+model.QuoteIdentifier(name))
		return err
	})
	if err != nil {
		return nil, NewErrorContext("read table", info.Source).WithTable(name).Error(err)
	}

	columns := make([]model.Column, len(names))
	for i, colName := range names {
		kind := model.KindText
		if i < len(info.Kinds) {
			kind = info.Kinds[i]
		}
		values := make([]any, len(records))
		for r, record := range records {
			values[r] = fromStored(kind, record[i])
		}
		columns[i] = model.Column{Name: colName, Kind: kind, Values: values}
	}
	return model.NewDataset(model.NewTableName(name), columns)
}

// fromStored maps an engine value back to the Go type of its column kind.
func fromStored(kind model.ColumnKind, v any) any {
	if v == nil {
		return nil
	}

	switch kind {
	case model.KindBoolean:
		switch b := v.(type) {
		case int64:
			return b != 0
		case bool:
			return b
		}
	case model.KindTemporal:
		switch t := v.(type) {
		case time.Time:
			return t
		case string:
			if parsed, ok := model.ParseTemporal(t); ok {
				return parsed
			}
			return nil
		}
	case model.KindFloat:
		if i, ok := v.(int64); ok {
			return float64(i)
		}
	}
	return v
}
