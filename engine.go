// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package nlqengine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/nlqengine/ai"
	"github.com/poiesic/nlqengine/ai/openai"
	"github.com/poiesic/nlqengine/config"
	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/query"
	"github.com/poiesic/nlqengine/schema"
	"github.com/poiesic/nlqengine/search"
	"github.com/poiesic/nlqengine/storage"
	"github.com/poiesic/nlqengine/storage/badger"

	_ "github.com/poiesic/nlqengine/storage/duckdb"
	_ "github.com/poiesic/nlqengine/storage/sqlite"
)

// ErrConfigRequired is returned when New is called without a configuration.
var ErrConfigRequired = errors.New("config is required")

// Engine is the application context: it owns the relational store, the AI
// provider, the document index and everything wired on top of them.
type Engine struct {
	cfg          *config.Config
	store        storage.Store
	provider     ai.AIProvider
	cache        *badger.EmbeddingCache
	index        *search.Index
	catalog      *schema.Catalog
	orchestrator *query.Orchestrator
	logger       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	store        storage.Store
	provider     ai.AIProvider
	buildMonitor search.BuildMonitor
	queryMonitor query.Monitor
	logger       *slog.Logger
}

// WithStore uses an already open store instead of opening DATABASE_URL.
// The engine takes ownership and closes it.
func WithStore(store storage.Store) EngineOption {
	return func(o *engineOptions) {
		o.store = store
	}
}

// WithProvider uses the given AI provider instead of the OpenAI-compatible
// one built from configuration. The engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithBuildMonitor observes BuildIndex.
func WithBuildMonitor(monitor search.BuildMonitor) EngineOption {
	return func(o *engineOptions) {
		o.buildMonitor = monitor
	}
}

// WithQueryMonitor observes every Answer.
// Default is a query.LoggingMonitor.
func WithQueryMonitor(monitor query.Monitor) EngineOption {
	return func(o *engineOptions) {
		o.queryMonitor = monitor
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// New wires an engine from configuration. The document index starts
// unbuilt; call BuildIndex before serving questions.
func New(ctx context.Context, cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	options := &engineOptions{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{cfg: cfg, logger: logger.With("component", "engine")}

	// Open store
	e.store = options.store
	if e.store == nil {
		store, err := storage.Open(ctx, cfg.Database.URL, cfg.Pool())
		if err != nil {
			return nil, err
		}
		e.store = store
	}

	// Create AI provider for the store's dialect
	e.provider = options.provider
	if e.provider == nil {
		provider, err := openai.NewProvider(cfg.Provider(e.store.Dialect()))
		if err != nil {
			e.Close()
			return nil, core.Wrap(err, core.KindConfiguration, "invalid AI provider configuration")
		}
		e.provider = provider
	}

	indexOpts := []search.Option{
		search.WithLogger(logger),
		search.WithTopK(cfg.Search.TopK),
		search.WithBatchSize(cfg.Search.BatchSize),
		search.WithWorkers(cfg.Search.Workers),
		search.WithMonitor(options.buildMonitor),
	}
	if cfg.Search.CacheDir != "" {
		cache, err := badger.OpenEmbeddingCache(cfg.Search.CacheDir)
		if err != nil {
			e.Close()
			return nil, core.Wrap(err, core.KindConfiguration, "cannot open embedding cache")
		}
		e.cache = cache
		indexOpts = append(indexOpts, search.WithCache(cache, cfg.AI.EmbeddingModel))
	}

	var err error
	if e.index, err = search.New(e.provider.Embedder(), indexOpts...); err != nil {
		e.Close()
		return nil, err
	}

	if e.catalog, err = schema.NewCatalog(e.store, schema.WithLogger(logger)); err != nil {
		e.Close()
		return nil, err
	}

	monitor := options.queryMonitor
	if monitor == nil {
		monitor = query.NewLoggingMonitor(logger)
	}
	e.orchestrator, err = query.NewOrchestrator(e.index, e.catalog, e.provider.QueryGenerator(), e.store,
		query.WithLogger(logger),
		query.WithTopK(cfg.Search.TopK),
		query.WithTableValidation(cfg.Query.ValidateTables),
		query.WithMonitor(monitor),
	)
	if err != nil {
		e.Close()
		return nil, err
	}

	return e, nil
}

// BuildIndex loads and embeds the configured documents directory.
func (e *Engine) BuildIndex(ctx context.Context) (*search.BuildReport, error) {
	return e.index.Build(ctx, e.cfg.Search.DocumentsDir)
}

// Answer answers a natural-language question.
func (e *Engine) Answer(ctx context.Context, question string) (*core.QueryResult, error) {
	return e.orchestrator.Answer(ctx, question)
}

// Describe returns a fresh snapshot of the store's schema.
func (e *Engine) Describe(ctx context.Context) (*core.SchemaSnapshot, error) {
	return e.catalog.Describe(ctx)
}

// Ping checks that the store is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// Index returns the document index.
func (e *Engine) Index() *search.Index {
	return e.index
}

// Store returns the relational store.
func (e *Engine) Store() storage.Store {
	return e.store
}

// Close releases the provider, the embedding cache and the store.
func (e *Engine) Close() error {
	var errs []error

	// Close AI provider first
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}

	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Error("error closing embedding cache", "err", err)
			errs = append(errs, err)
		}
	}

	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Error("error closing store", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
