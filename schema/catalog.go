package schema

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/storage"
)

// ErrStoreRequired is returned when a nil store is supplied.
var ErrStoreRequired = errors.New("store required")

// Catalog produces SchemaSnapshots from a store.
type Catalog struct {
	store  storage.Store
	logger *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCatalog creates a catalog over store.
func NewCatalog(store storage.Store, opts ...Option) (*Catalog, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	c := &Catalog{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "schema-catalog")
	return c, nil
}

// Describe enumerates every user table with its columns and foreign keys.
//
// A store with no tables yields an empty snapshot, not an error. Any failure
// talking to the store is a connection error.
func (c *Catalog) Describe(ctx context.Context) (*core.SchemaSnapshot, error) {
	in, err := c.store.Inspect(ctx)
	if err != nil {
		c.logger.Error("error opening inspection session", "err", err)
		return nil, core.Wrap(err, core.KindConnection, "cannot inspect database")
	}
	defer in.Close()

	names, err := in.TableNames(ctx)
	if err != nil {
		c.logger.Error("error listing tables", "err", err)
		return nil, core.Wrap(err, core.KindConnection, "cannot list tables")
	}

	snapshot := core.NewSchemaSnapshot()
	for _, name := range names {
		columns, err := in.Columns(ctx, name)
		if err != nil {
			c.logger.Error("error listing columns", "table", name, "err", err)
			return nil, core.Wrap(err, core.KindConnection, "cannot list columns of "+name)
		}

		fks, err := in.ForeignKeys(ctx, name)
		if err != nil {
			c.logger.Error("error listing foreign keys", "table", name, "err", err)
			return nil, core.Wrap(err, core.KindConnection, "cannot list foreign keys of "+name)
		}

		if columns == nil {
			columns = []core.Column{}
		}
		if fks == nil {
			fks = []core.ForeignKey{}
		}
		snapshot.Tables[name] = core.Table{
			Name:        name,
			Columns:     columns,
			ForeignKeys: fks,
		}
	}

	if err := core.ValidateSnapshot(snapshot); err != nil {
		c.logger.Error("inconsistent schema snapshot", "err", err)
		return nil, core.Wrap(err, core.KindInternal, "inconsistent schema snapshot")
	}

	c.logger.Debug("described schema", "tables", len(snapshot.Tables))
	return snapshot, nil
}
