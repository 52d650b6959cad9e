// Package duckdb registers the "duckdb" database URL scheme.
//
// An empty DSN opens an in-memory database. All connections of one Store
// share the same database instance.
package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/storage"
)

func init() {
	storage.Register("duckdb", Open)
}

// Store implements storage.Store over DuckDB.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Open opens a DuckDB store. Returns storage.Store interface to enforce abstraction.
func Open(ctx context.Context, dsn string, pool storage.PoolConfig) (storage.Store, error) {
	return open(ctx, dsn, pool)
}

func open(ctx context.Context, dsn string, pool storage.PoolConfig) (*Store, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, core.Wrap(err, core.KindConnection, "cannot open duckdb database")
	}
	pool.Apply(db)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, core.Wrap(err, core.KindConnection, "cannot reach duckdb database")
	}

	log := slog.Default().With("component", "duckdb-store")
	log.Debug("opened duckdb store", "dsn", dsn)
	return &Store{db: db, logger: log}, nil
}

// Inspect opens an inspection session pinned to one connection.
func (s *Store) Inspect(ctx context.Context) (storage.Inspector, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, core.Wrap(err, core.KindConnection, "cannot open inspection session")
	}
	return &inspector{conn: conn}, nil
}

// Query runs statement inside a transaction that is always rolled back.
// go-duckdb has no read-only transactions, so writes are discarded instead.
func (s *Store) Query(ctx context.Context, statement string) ([]core.Row, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Warn("failed to roll back query transaction", "err", err)
		}
	}()

	rows, err := tx.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	return storage.ScanRows(rows)
}

// Exec runs a statement that may modify the database.
func (s *Store) Exec(ctx context.Context, statement string) error {
	_, err := s.db.ExecContext(ctx, statement)
	return err
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Dialect returns core.DialectDuckDB.
func (s *Store) Dialect() core.Dialect {
	return core.DialectDuckDB
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
