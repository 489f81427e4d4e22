package madtsql

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// ErrNotLoaded is returned by a Catalog that has not completed a load yet.
var ErrNotLoaded = errors.New("madtsql: catalog has not been loaded")

// Catalog holds the current Store and replaces it on reload. Readers never
// see a half-loaded store: a reload builds a complete new Store, publishes
// it with one pointer swap and only then closes the previous one.
type Catalog struct {
	builder *Builder
	current atomic.Pointer[Store]
	reloads singleflight.Group
	logger  *slog.Logger
}

// NewCatalog creates an empty catalog loading from builder.
func NewCatalog(builder *Builder) *Catalog {
	return &Catalog{
		builder: builder,
		logger:  builder.logger,
	}
}

// Current returns the published store, or nil before the first Reload.
func (c *Catalog) Current() *Store {
	return c.current.Load()
}

// Reload runs a full load cycle and publishes the result. Concurrent calls
// share a single load.
func (c *Catalog) Reload(ctx context.Context) (*Store, error) {
	v, err, _ := c.reloads.Do("reload", func() (any, error) {
		store, err := c.builder.Load(ctx)
		if err != nil {
			return nil, err
		}

		if old := c.current.Swap(store); old != nil {
			if err := old.Close(); err != nil {
				c.logger.Warn("closing previous store", slog.String("generation", old.Generation()), slog.Any("error", err))
			}
		}
		return store, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Query runs req against the current store. A query that lost a race with
// a reload is retried once against the new store.
func (c *Catalog) Query(ctx context.Context, req QueryRequest) (*ResultSet, error) {
	for attempt := 0; ; attempt++ {
		store := c.Current()
		if store == nil {
			return nil, ErrNotLoaded
		}

		rs, err := store.Query(ctx, req)
		if errors.Is(err, ErrStoreClosed) && attempt == 0 && c.Current() != store {
			continue
		}
		return rs, err
	}
}

// Close closes the current store. The catalog can be reloaded afterwards.
func (c *Catalog) Close() error {
	if store := c.current.Swap(nil); store != nil {
		return store.Close()
	}
	return nil
}
