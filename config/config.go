// Package config loads engine settings from the environment.
//
// An optional .env file is read first; variables already set in the process
// environment win over values from the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/poiesic/nlqengine/ai"
	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/storage"
)

// Config is the complete engine configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	AI       AIConfig
	Search   SearchConfig
	Query    QueryConfig
	Logging  LoggingConfig
}

// DatabaseConfig selects the relational store and bounds its pool.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS"     envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS"     envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME"  envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"5m"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr           string   `env:"SERVER_ADDR"            envDefault:":8000"`
	AllowedOrigins []string `env:"SERVER_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// AIConfig selects the embedding and generation services.
type AIConfig struct {
	EmbeddingHost   string `env:"AI_EMBEDDING_HOST"   envDefault:"http://localhost:11434/v1"`
	GenerationHost  string `env:"AI_GENERATION_HOST"  envDefault:"http://localhost:11434/v1"`
	EmbeddingModel  string `env:"AI_EMBEDDING_MODEL"  envDefault:"all-minilm"`
	GenerationModel string `env:"AI_GENERATION_MODEL" envDefault:"qwen2.5:3b"`
	Token           string `env:"AI_API_TOKEN"        envDefault:"none"`
}

// SearchConfig configures the document index.
type SearchConfig struct {
	DocumentsDir string `env:"DOCUMENTS_DIR"       envDefault:"documents"`
	TopK         int    `env:"SEARCH_TOP_K"        envDefault:"3"`
	BatchSize    int    `env:"SEARCH_BATCH_SIZE"   envDefault:"32"`
	Workers      int    `env:"INGEST_WORKERS"`
	CacheDir     string `env:"EMBEDDING_CACHE_DIR"`
}

// QueryConfig configures generated-query handling.
type QueryConfig struct {
	ValidateTables bool `env:"QUERY_VALIDATE_TABLES" envDefault:"true"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"` // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"text"` // text, json
}

// Load reads the given .env files (".env" when none are named), parses the
// environment and validates the result. Missing .env files are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, core.Wrap(err, core.KindConfiguration, fmt.Sprintf("cannot read %s", file))
		}
	}
	return FromEnvironment()
}

// FromEnvironment parses the process environment and validates the result.
func FromEnvironment() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, core.Wrap(err, core.KindConfiguration, "cannot parse environment")
	}
	if cfg.Search.Workers <= 0 {
		cfg.Search.Workers = max(runtime.NumCPU()/2, 1)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for common errors.
// Every failure is a configuration error.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return core.Wrap(storage.ErrMissingURL, core.KindConfiguration, "DATABASE_URL is not set")
	}
	if _, _, err := storage.ParseURL(c.Database.URL); err != nil {
		return core.Wrap(err, core.KindConfiguration, "invalid DATABASE_URL")
	}
	if strings.TrimSpace(c.Search.DocumentsDir) == "" {
		return core.NewError(core.KindConfiguration, "DOCUMENTS_DIR must not be empty")
	}
	if c.Search.TopK < 1 {
		return core.Errorf(core.KindConfiguration, "SEARCH_TOP_K must be at least 1, got %d", c.Search.TopK)
	}
	if c.Search.BatchSize < 1 {
		return core.Errorf(core.KindConfiguration, "SEARCH_BATCH_SIZE must be at least 1, got %d", c.Search.BatchSize)
	}
	if c.Database.MaxOpenConns < 1 {
		return core.Errorf(core.KindConfiguration, "DB_MAX_OPEN_CONNS must be at least 1, got %d", c.Database.MaxOpenConns)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return core.Wrap(err, core.KindConfiguration, "invalid LOG_LEVEL")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return core.Errorf(core.KindConfiguration, "invalid LOG_FORMAT: %s (must be text or json)", c.Logging.Format)
	}
	return nil
}

// Pool returns the connection pool bounds for the relational store.
func (c *Config) Pool() storage.PoolConfig {
	return storage.PoolConfig{
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
	}
}

// Provider returns the AI provider configuration for a store dialect.
func (c *Config) Provider(dialect core.Dialect) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithToken(c.AI.Token),
		ai.WithDialect(dialect),
		ai.WithEmbeddingBatchSize(c.Search.BatchSize),
	)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (must be debug, info, warn, or error)", level)
	}
}
