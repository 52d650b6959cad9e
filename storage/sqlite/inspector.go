package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/storage"
	"gorm.io/gorm"
)

// inspector reads the SQLite catalog over one pinned connection.
type inspector struct {
	db   *gorm.DB
	conn *sql.Conn
}

type columnInfo struct {
	Cid  int
	Name string
	Type string
	Pk   int
}

type foreignKeyInfo struct {
	ID         int
	Seq        int
	RefTable   string
	FromColumn string
	ToColumn   sql.NullString
}

// TableNames lists tables in creation order, skipping SQLite's own
// sqlite_ bookkeeping tables.
func (i *inspector) TableNames(ctx context.Context) ([]string, error) {
	tables, err := i.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tables))
	for _, name := range tables {
		if strings.HasPrefix(strings.ToLower(name), "sqlite_") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (i *inspector) columnInfo(ctx context.Context, table string) ([]columnInfo, error) {
	var cols []columnInfo
	err := i.db.WithContext(ctx).
		Raw(`SELECT cid, name, type, pk FROM pragma_table_info(?) ORDER BY cid`, table).
		Scan(&cols).Error
	return cols, err
}

func (i *inspector) Columns(ctx context.Context, table string) ([]core.Column, error) {
	cols, err := i.columnInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	columns := make([]core.Column, len(cols))
	for n, c := range cols {
		columns[n] = core.Column{Name: c.Name, Type: storage.NormalizeType(c.Type)}
	}
	return columns, nil
}

// ForeignKeys groups pragma_foreign_key_list rows by constraint id.
// A reference without explicit target columns points at the primary key.
// When the target has no primary key of matching width the constraint is
// omitted; SQLite rejects writes through it as a foreign key mismatch.
func (i *inspector) ForeignKeys(ctx context.Context, table string) ([]core.ForeignKey, error) {
	var rows []foreignKeyInfo
	err := i.db.WithContext(ctx).
		Raw(`SELECT id, seq, "table" AS ref_table, "from" AS from_column, "to" AS to_column
		     FROM pragma_foreign_key_list(?) ORDER BY id, seq`, table).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var fks []core.ForeignKey
	implicit := make(map[int]bool)
	for _, row := range rows {
		if len(fks) == 0 || row.Seq == 0 {
			fks = append(fks, core.ForeignKey{ReferredTable: row.RefTable})
		}
		fk := &fks[len(fks)-1]
		fk.ConstrainedColumns = append(fk.ConstrainedColumns, row.FromColumn)
		if row.ToColumn.Valid && row.ToColumn.String != "" {
			fk.ReferredColumns = append(fk.ReferredColumns, row.ToColumn.String)
		} else {
			implicit[len(fks)-1] = true
		}
	}

	resolved := make([]core.ForeignKey, 0, len(fks))
	for n, fk := range fks {
		if implicit[n] {
			pk, err := i.primaryKey(ctx, fk.ReferredTable)
			if err != nil {
				return nil, err
			}
			fk.ReferredColumns = pk
		}
		if len(fk.ReferredColumns) != len(fk.ConstrainedColumns) {
			continue
		}
		resolved = append(resolved, fk)
	}
	return resolved, nil
}

func (i *inspector) primaryKey(ctx context.Context, table string) ([]string, error) {
	cols, err := i.columnInfo(ctx, table)
	if err != nil {
		return nil, err
	}

	var pk []string
	for position := 1; ; position++ {
		found := false
		for _, c := range cols {
			if c.Pk == position {
				pk = append(pk, c.Name)
				found = true
			}
		}
		if !found {
			return pk, nil
		}
	}
}

func (i *inspector) Close() error {
	return i.conn.Close()
}
