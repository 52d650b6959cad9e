package duckdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/storage"
)

// listSeparator joins DuckDB list values in catalog queries.
const listSeparator = "\x1f"

// inspector reads information_schema and duckdb_constraints() over one
// pinned connection. Only base tables of the current schema are reported,
// which leaves out DuckDB's system catalogs.
type inspector struct {
	conn *sql.Conn
}

func (i *inspector) TableNames(ctx context.Context) ([]string, error) {
	rows, err := i.conn.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_catalog = current_database()
		  AND table_schema = current_schema()
		ORDER BY table_name`)
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

func (i *inspector) Columns(ctx context.Context, table string) ([]core.Column, error) {
	rows, err := i.conn.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_catalog = current_database()
		  AND table_schema = current_schema()
		  AND table_name = ?
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []core.Column
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			return nil, err
		}
		columns = append(columns, core.Column{Name: name, Type: storage.NormalizeType(dataType)})
	}
	return columns, rows.Err()
}

func (i *inspector) ForeignKeys(ctx context.Context, table string) ([]core.ForeignKey, error) {
	rows, err := i.conn.QueryContext(ctx, `
		SELECT array_to_string(constraint_column_names, ?),
		       referenced_table,
		       array_to_string(referenced_column_names, ?)
		FROM duckdb_constraints()
		WHERE constraint_type = 'FOREIGN KEY'
		  AND database_name = current_database()
		  AND schema_name = current_schema()
		  AND table_name = ?
		ORDER BY constraint_index`, listSeparator, listSeparator, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []core.ForeignKey
	for rows.Next() {
		var constrained, referredTable, referred string
		if err := rows.Scan(&constrained, &referredTable, &referred); err != nil {
			return nil, err
		}
		fks = append(fks, core.ForeignKey{
			ConstrainedColumns: strings.Split(constrained, listSeparator),
			ReferredTable:      referredTable,
			ReferredColumns:    strings.Split(referred, listSeparator),
		})
	}
	return fks, rows.Err()
}

func (i *inspector) Close() error {
	return i.conn.Close()
}
