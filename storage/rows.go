package storage

import (
	"database/sql"
	"strings"

	"github.com/poiesic/nlqengine/core"
)

// ScanRows reads every remaining row into column-keyed maps and closes rows.
// []byte values become strings. A statement that yields no rows returns an
// empty, non-nil slice.
func ScanRows(rows *sql.Rows) ([]core.Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]core.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(core.Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// NormalizeType renders a declared column type in canonical form:
// upper case with collapsed whitespace. An undeclared type is "NULL".
func NormalizeType(declared string) string {
	normalized := strings.Join(strings.Fields(strings.ToUpper(declared)), " ")
	if normalized == "" {
		return "NULL"
	}
	return normalized
}
