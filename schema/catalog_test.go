package schema

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/storage"
	_ "github.com/poiesic/nlqengine/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore implements storage.Store for testing
type testStore struct {
	inspectErr error
	inspector  *testInspector
	inspects   int
}

func (s *testStore) Inspect(ctx context.Context) (storage.Inspector, error) {
	s.inspects++
	if s.inspectErr != nil {
		return nil, s.inspectErr
	}
	return s.inspector, nil
}

func (s *testStore) Query(ctx context.Context, statement string) ([]core.Row, error) {
	return nil, errors.New("not implemented")
}
func (s *testStore) Exec(ctx context.Context, statement string) error {
	return errors.New("not implemented")
}
func (s *testStore) Ping(ctx context.Context) error { return nil }
func (s *testStore) Dialect() core.Dialect          { return core.DialectSQLite }
func (s *testStore) Close() error                   { return nil }

// testInspector implements storage.Inspector for testing
type testInspector struct {
	tables     []string
	columns    map[string][]core.Column
	fks        map[string][]core.ForeignKey
	tablesErr  error
	columnsErr error
	closed     int
}

func (i *testInspector) TableNames(ctx context.Context) ([]string, error) {
	return i.tables, i.tablesErr
}

func (i *testInspector) Columns(ctx context.Context, table string) ([]core.Column, error) {
	return i.columns[table], i.columnsErr
}

func (i *testInspector) ForeignKeys(ctx context.Context, table string) ([]core.ForeignKey, error) {
	return i.fks[table], nil
}

func (i *testInspector) Close() error {
	i.closed++
	return nil
}

func TestNewCatalog_RequiresStore(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)
}

func TestCatalog_Describe(t *testing.T) {
	inspector := &testInspector{
		tables: []string{"employees"},
		columns: map[string][]core.Column{
			"employees": {{Name: "name", Type: "TEXT"}, {Name: "department", Type: "TEXT"}},
		},
	}
	store := &testStore{inspector: inspector}
	catalog, err := NewCatalog(store)
	require.NoError(t, err)

	snapshot, err := catalog.Describe(context.Background())
	require.NoError(t, err)
	require.True(t, snapshot.HasTable("employees"))
	assert.Equal(t, "employees", snapshot.Tables["employees"].Name)
	assert.Len(t, snapshot.Tables["employees"].Columns, 2)
	assert.NotNil(t, snapshot.Tables["employees"].ForeignKeys)
	assert.Equal(t, 1, inspector.closed)

	// Nothing is cached between calls
	_, err = catalog.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.inspects)
	assert.Equal(t, 2, inspector.closed)
}

func TestCatalog_Describe_EmptyStore(t *testing.T) {
	catalog, err := NewCatalog(&testStore{inspector: &testInspector{}})
	require.NoError(t, err)

	snapshot, err := catalog.Describe(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tables": {}}`, string(data))
}

func TestCatalog_Describe_InconsistentForeignKey(t *testing.T) {
	inspector := &testInspector{
		tables:  []string{"child"},
		columns: map[string][]core.Column{"child": {{Name: "y", Type: "TEXT"}}},
		fks: map[string][]core.ForeignKey{
			"child": {{ConstrainedColumns: []string{"y"}, ReferredTable: "parent"}},
		},
	}
	catalog, err := NewCatalog(&testStore{inspector: inspector})
	require.NoError(t, err)

	_, err = catalog.Describe(context.Background())
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindInternal))
	assert.ErrorIs(t, err, core.ErrForeignKeyArity)
	assert.Equal(t, 1, inspector.closed)
}

func TestCatalog_Describe_Failures(t *testing.T) {
	testCases := []struct {
		name  string
		store *testStore
	}{
		{"session cannot open", &testStore{inspectErr: errors.New("dial tcp: connection refused")}},
		{"table listing fails", &testStore{inspector: &testInspector{tablesErr: errors.New("disk I/O error")}}},
		{"column listing fails", &testStore{inspector: &testInspector{tables: []string{"t"}, columnsErr: errors.New("database is locked")}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			catalog, err := NewCatalog(tc.store)
			require.NoError(t, err)

			_, err = catalog.Describe(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConnection))
		})
	}
}

func TestCatalog_Describe_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, "sqlite://", storage.DefaultPoolConfig())
	require.NoError(t, err)
	defer store.Close()

	for _, stmt := range []string{
		`CREATE TABLE departments (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT, department_id INTEGER REFERENCES departments(id))`,
	} {
		require.NoError(t, store.Exec(ctx, stmt))
	}

	catalog, err := NewCatalog(store)
	require.NoError(t, err)

	snapshot, err := catalog.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"departments", "employees"}, snapshot.TableNames())

	// Unchanged store, identical snapshot
	again, err := catalog.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot, again)

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"tables": {
			"departments": {
				"columns": [{"name": "id", "type": "INTEGER"}, {"name": "name", "type": "TEXT"}],
				"foreign_keys": []
			},
			"employees": {
				"columns": [
					{"name": "id", "type": "INTEGER"},
					{"name": "name", "type": "TEXT"},
					{"name": "department_id", "type": "INTEGER"}
				],
				"foreign_keys": [
					{"constrained_columns": ["department_id"], "referred_table": "departments", "referred_columns": ["id"]}
				]
			}
		}
	}`, string(data))
}

func TestCatalog_Describe_SQLiteUnresolvedForeignKey(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(ctx, "sqlite://", storage.DefaultPoolConfig())
	require.NoError(t, err)
	defer store.Close()

	for _, stmt := range []string{
		`CREATE TABLE parent (x TEXT)`,
		`CREATE TABLE child (y TEXT REFERENCES parent)`,
	} {
		require.NoError(t, store.Exec(ctx, stmt))
	}

	catalog, err := NewCatalog(store)
	require.NoError(t, err)

	snapshot, err := catalog.Describe(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Tables["child"].ForeignKeys)
	assert.NoError(t, core.ValidateSnapshot(snapshot))
}
