package nlqengine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/nlqengine/ai/mock"
	"github.com/poiesic/nlqengine/config"
	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, databaseURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staff.txt"),
		[]byte("Alice works in Engineering.\n\nBob works in Sales."), 0o644))

	return &config.Config{
		Database: config.DatabaseConfig{URL: databaseURL, MaxOpenConns: 4, MaxIdleConns: 2},
		Search:   config.SearchConfig{DocumentsDir: dir, TopK: 3, BatchSize: 8, Workers: 2},
		Query:    config.QueryConfig{ValidateTables: true},
		AI:       config.AIConfig{EmbeddingModel: "keyword"},
	}
}

func newTestProvider() *mock.MockProvider {
	generator := mock.NewMockQueryGenerator()
	generator.Queries = map[string]string{
		"Who works in Engineering?": "SELECT name FROM employees WHERE department = 'Engineering'",
	}
	return mock.NewMockProviderWithServices(mock.NewKeywordEmbedder("alice", "bob", "engineering", "sales"), generator)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("requires config", func(t *testing.T) {
		_, err := New(ctx, nil)
		assert.ErrorIs(t, err, ErrConfigRequired)
	})

	t.Run("unknown scheme is a configuration error", func(t *testing.T) {
		_, err := New(ctx, testConfig(t, "postgres://localhost/db"), WithProvider(newTestProvider()))
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrConfiguration))
	})

	t.Run("closes provider and store", func(t *testing.T) {
		provider := newTestProvider()
		e, err := New(ctx, testConfig(t, "sqlite://"), WithProvider(provider))
		require.NoError(t, err)
		require.NoError(t, e.Ping(ctx))

		require.NoError(t, e.Close())
		assert.True(t, provider.Closed())
	})
}

func TestEngine_AliceAndBob(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider()

	e, err := New(ctx, testConfig(t, "sqlite://"), WithProvider(provider))
	require.NoError(t, err)
	defer e.Close()

	for _, stmt := range []string{
		`CREATE TABLE employees (name TEXT, department TEXT)`,
		`INSERT INTO employees VALUES ('Alice', 'Engineering'), ('Bob', 'Sales')`,
	} {
		require.NoError(t, e.Store().Exec(ctx, stmt))
	}

	// Answers need a built index
	_, err = e.Answer(ctx, "Who works in Engineering?")
	assert.ErrorIs(t, err, search.ErrIndexNotBuilt)

	report, err := e.BuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 2, e.Index().Len())

	snapshot, err := e.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"employees"}, snapshot.TableNames())

	result, err := e.Answer(ctx, "Who works in Engineering?")
	require.NoError(t, err)
	assert.Equal(t, "Alice works in Engineering.", result.DocumentHits[0].Content)
	assert.Equal(t, []core.Row{{"name": "Alice"}}, result.Rows)
	assert.Equal(t, 1, provider.GetMockGenerator().CallCount())
}

func TestEngine_EmptyStore(t *testing.T) {
	ctx := context.Background()
	provider := newTestProvider()

	e, err := New(ctx, testConfig(t, "sqlite://"), WithProvider(provider))
	require.NoError(t, err)
	defer e.Close()

	_, err = e.BuildIndex(ctx)
	require.NoError(t, err)

	_, err = e.Answer(ctx, "Who works in Engineering?")
	assert.True(t, errors.Is(err, core.ErrEmptySchema))
	assert.Equal(t, 0, provider.GetMockGenerator().CallCount())
}

func TestEngine_EmbeddingCache(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "sqlite://")
	cfg.Search.CacheDir = filepath.Join(t.TempDir(), "cache")

	first := newTestProvider()
	e, err := New(ctx, cfg, WithProvider(first))
	require.NoError(t, err)
	report, err := e.BuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Cached)
	require.NoError(t, e.Close())

	// A second engine on the same cache embeds nothing during Build
	second := newTestProvider()
	e, err = New(ctx, cfg, WithProvider(second))
	require.NoError(t, err)
	defer e.Close()

	report, err = e.BuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Cached)
	assert.Equal(t, 0, second.GetMockEmbedder().TextsCount())
}
