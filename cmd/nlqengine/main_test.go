package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"nlqengine"}, args...))
	return stdout.String(), err
}

func TestSetupLogger(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	t.Run("invalid level", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "loud", "schema")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loud")
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := runApp(t, "--log-format", "xml", "schema")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "xml")
	})
}

// unsetEnv removes keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLogLevelFromEnvironment(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })
	t.Setenv("LOG_LEVEL", "debug")

	_, err := runApp(t, "ask")
	require.Error(t, err)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestLogLevelFromEnvFile(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })
	unsetEnv(t, "LOG_LEVEL", "LOG_FORMAT", "DATABASE_URL")

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=sqlite://\nLOG_LEVEL=warn\n"), 0o644))

	out, err := runApp(t, "--env-file", envFile, "schema")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tables": {}}`, out)

	ctx := context.Background()
	assert.False(t, slog.Default().Enabled(ctx, slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(ctx, slog.LevelWarn))
}

func TestLogLevelFlagOverridesEnvFile(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })
	unsetEnv(t, "LOG_LEVEL", "LOG_FORMAT", "DATABASE_URL")

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("DATABASE_URL=sqlite://\nLOG_LEVEL=warn\n"), 0o644))

	_, err := runApp(t, "--env-file", envFile, "--log-level", "debug", "schema")
	require.NoError(t, err)
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}

func TestSeedAndSchema(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DOCUMENTS_DIR", "")

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "company.db")
	docsDir := filepath.Join(dir, "documents")
	envFile := filepath.Join(dir, "absent.env")

	_, err := runApp(t, "seed", "--db", dbPath, "--documents", docsDir)
	require.NoError(t, err)

	// Seeding twice does not duplicate rows
	_, err = runApp(t, "seed", "--db", dbPath, "--documents", docsDir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(docsDir, "handbook.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Alice works in Engineering")

	out, err := runApp(t, "--env-file", envFile, "schema", "--database-url", "sqlite:///"+dbPath)
	require.NoError(t, err)

	var snapshot struct {
		Tables map[string]struct {
			Columns []struct {
				Name string `json:"name"`
			} `json:"columns"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))
	require.Contains(t, snapshot.Tables, "employees")

	var columns []string
	for _, col := range snapshot.Tables["employees"].Columns {
		columns = append(columns, col.Name)
	}
	assert.Equal(t, []string{"id", "name", "department"}, columns)
}

func TestSchema_MissingDatabaseURL(t *testing.T) {
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })
	t.Setenv("DATABASE_URL", "")

	_, err := runApp(t, "--env-file", filepath.Join(t.TempDir(), "absent.env"), "schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestAsk_RequiresQuestion(t *testing.T) {
	_, err := runApp(t, "ask")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question is required")
}
