// Package sqlite registers the "sqlite" database URL scheme.
//
// The store is built on gorm with the pure-Go glebarez driver, so no cgo
// toolchain is needed. An empty DSN opens a private in-memory database
// that lives on a single pooled connection.
package sqlite

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryDSN = ":memory:"

func init() {
	storage.Register("sqlite", Open)
}

// Store implements storage.Store over SQLite.
type Store struct {
	db     *gorm.DB
	sqlDB  *sql.DB
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// OpenGorm opens a gorm handle on a SQLite database file, or an in-memory
// database when dsn is empty. Statements are logged through slog.
func OpenGorm(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = memoryDSN
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.NewSlogLogger(slog.Default().With("component", "gorm"), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			IgnoreRecordNotFoundError: true,
			LogLevel:                  logger.Warn,
		}),
	})
}

// Open opens a SQLite store. Returns storage.Store interface to enforce abstraction.
func Open(ctx context.Context, dsn string, pool storage.PoolConfig) (storage.Store, error) {
	return open(ctx, dsn, pool)
}

func open(ctx context.Context, dsn string, pool storage.PoolConfig) (*Store, error) {
	log := slog.Default().With("component", "sqlite-store")

	// Every connection to ":memory:" is a separate database
	if dsn == "" || dsn == memoryDSN {
		pool = storage.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}
	}

	db, err := OpenGorm(dsn)
	if err != nil {
		return nil, core.Wrap(err, core.KindConnection, "cannot open sqlite database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, core.Wrap(err, core.KindConnection, "cannot access sqlite connection pool")
	}
	pool.Apply(sqlDB)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, core.Wrap(err, core.KindConnection, "cannot reach sqlite database")
	}

	log.Debug("opened sqlite store", "dsn", dsn)
	return &Store{db: db, sqlDB: sqlDB, logger: log}, nil
}

// Inspect opens an inspection session pinned to one connection.
func (s *Store) Inspect(ctx context.Context) (storage.Inspector, error) {
	conn, err := s.sqlDB.Conn(ctx)
	if err != nil {
		return nil, core.Wrap(err, core.KindConnection, "cannot open inspection session")
	}

	tx := s.db.Session(&gorm.Session{NewDB: true, Context: ctx})
	tx.Statement.ConnPool = conn
	return &inspector{db: tx, conn: conn}, nil
}

// Query runs statement on a pinned connection with query_only set, so any
// attempt to write fails with SQLITE_READONLY.
func (s *Store) Query(ctx context.Context, statement string) ([]core.Row, error) {
	conn, err := s.sqlDB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, err
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF"); err != nil {
			s.logger.Warn("failed to reset query_only", "err", err)
		}
	}()

	rows, err := conn.QueryContext(ctx, statement)
	if err != nil {
		return nil, err
	}
	return storage.ScanRows(rows)
}

// Exec runs a statement that may modify the database.
func (s *Store) Exec(ctx context.Context, statement string) error {
	return s.db.WithContext(ctx).Exec(statement).Error
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

// Dialect returns core.DialectSQLite.
func (s *Store) Dialect() core.Dialect {
	return core.DialectSQLite
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}
