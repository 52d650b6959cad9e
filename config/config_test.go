package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Config reads so ambient settings do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
		"SERVER_ADDR", "SERVER_ALLOWED_ORIGINS",
		"AI_EMBEDDING_HOST", "AI_GENERATION_HOST", "AI_EMBEDDING_MODEL", "AI_GENERATION_MODEL", "AI_API_TOKEN",
		"DOCUMENTS_DIR", "SEARCH_TOP_K", "SEARCH_BATCH_SIZE", "INGEST_WORKERS", "EMBEDDING_CACHE_DIR",
		"QUERY_VALIDATE_TABLES", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnvironment_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite:///company.db")

	cfg, err := FromEnvironment()
	require.NoError(t, err)

	assert.Equal(t, "sqlite:///company.db", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "documents", cfg.Search.DocumentsDir)
	assert.Equal(t, 3, cfg.Search.TopK)
	assert.Equal(t, 32, cfg.Search.BatchSize)
	assert.GreaterOrEqual(t, cfg.Search.Workers, 1)
	assert.Empty(t, cfg.Search.CacheDir)
	assert.True(t, cfg.Query.ValidateTables)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "all-minilm", cfg.AI.EmbeddingModel)
}

func TestFromEnvironment_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "duckdb:///warehouse.duckdb")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://localhost:3000,https://app.example.com")
	t.Setenv("SEARCH_TOP_K", "5")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1h")
	t.Setenv("QUERY_VALIDATE_TABLES", "false")
	t.Setenv("INGEST_WORKERS", "7")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnvironment()
	require.NoError(t, err)

	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5, cfg.Search.TopK)
	assert.Equal(t, time.Hour, cfg.Pool().ConnMaxLifetime)
	assert.False(t, cfg.Query.ValidateTables)
	assert.Equal(t, 7, cfg.Search.Workers)
}

func TestFromEnvironment_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := FromEnvironment()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
	assert.True(t, errors.Is(err, storage.ErrMissingURL))
}

func TestFromEnvironment_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"url without scheme", "DATABASE_URL", "company.db"},
		{"zero top k", "SEARCH_TOP_K", "0"},
		{"non-numeric top k", "SEARCH_TOP_K", "three"},
		{"zero batch size", "SEARCH_BATCH_SIZE", "0"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown log format", "LOG_FORMAT", "xml"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "sqlite://")
			t.Setenv(tc.key, tc.value)

			_, err := FromEnvironment()
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfiguration), "got %v", err)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DATABASE_URL=sqlite:///from-file.db\nDOCUMENTS_DIR=corpus\n"), 0o600))

	// Process environment wins over the file
	t.Setenv("DOCUMENTS_DIR", "override")
	t.Cleanup(func() { os.Unsetenv("DATABASE_URL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///from-file.db", cfg.Database.URL)
	assert.Equal(t, "override", cfg.Search.DocumentsDir)
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestConfig_Provider(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "duckdb://")
	t.Setenv("AI_GENERATION_MODEL", "gpt-4o-mini")

	cfg, err := FromEnvironment()
	require.NoError(t, err)

	provider := cfg.Provider(core.DialectDuckDB)
	assert.Equal(t, "gpt-4o-mini", provider.GenerationModel)
	assert.Equal(t, core.DialectDuckDB, provider.Dialect)
	assert.Equal(t, 32, provider.EmbeddingBatchSize)
	assert.NoError(t, provider.Validate())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
