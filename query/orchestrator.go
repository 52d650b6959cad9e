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

package query

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/nlqengine/ai"
	"github.com/poiesic/nlqengine/core"
	"golang.org/x/sync/errgroup"
)

// DocumentSearcher finds the chunks nearest to a question.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, k int) ([]core.Chunk, error)
}

// SchemaDescriber produces a snapshot of the relational store.
type SchemaDescriber interface {
	Describe(ctx context.Context) (*core.SchemaSnapshot, error)
}

// Executor runs read-only statements against the relational store.
type Executor interface {
	Query(ctx context.Context, statement string) ([]core.Row, error)
	Ping(ctx context.Context) error
}

// Orchestrator answers a question from documents and the relational store.
type Orchestrator struct {
	searcher       DocumentSearcher
	describer      SchemaDescriber
	generator      ai.QueryGenerator
	executor       Executor
	topK           int
	validateTables bool
	monitor        Monitor
	logger         *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithMonitor sets a monitor observing each Answer.
func WithMonitor(monitor Monitor) Option {
	return func(o *Orchestrator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		o.monitor = monitor
		return nil
	}
}

// WithTopK sets the number of document hits per question.
// Values <= 0 defer to the searcher's default.
func WithTopK(k int) Option {
	return func(o *Orchestrator) error {
		o.topK = k
		return nil
	}
}

// WithTableValidation toggles the check that generated statements only read
// tables present in the schema. Default is true. Single read-only statement
// checks always apply.
func WithTableValidation(enabled bool) Option {
	return func(o *Orchestrator) error {
		o.validateTables = enabled
		return nil
	}
}

// NewOrchestrator wires the components needed to answer questions.
func NewOrchestrator(searcher DocumentSearcher, describer SchemaDescriber, generator ai.QueryGenerator, executor Executor, opts ...Option) (*Orchestrator, error) {
	switch {
	case searcher == nil:
		return nil, ErrSearcherRequired
	case describer == nil:
		return nil, ErrCatalogRequired
	case generator == nil:
		return nil, ErrGeneratorRequired
	case executor == nil:
		return nil, ErrExecutorRequired
	}

	o := &Orchestrator{
		searcher:       searcher,
		describer:      describer,
		generator:      generator,
		executor:       executor,
		validateTables: true,
		monitor:        &noopMonitor{},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	o.logger = o.logger.With("component", "query-orchestrator")
	return o, nil
}

// Answer searches the documents while translating question into SQL and
// executing it, then merges both results. Any failure aborts the whole
// answer; when both paths fail the SQL error is returned.
func (o *Orchestrator) Answer(ctx context.Context, question string) (*core.QueryResult, error) {
	o.monitor.Start(question)

	var hits []core.Chunk
	var g errgroup.Group
	g.Go(func() error {
		var err error
		hits, err = o.searcher.Search(ctx, question, o.topK)
		o.monitor.AfterSearch(hits, err)
		if err != nil {
			return core.Wrap(err, core.KindEmbedding, "document search failed")
		}
		return nil
	})

	statement, rows, sqlErr := o.answerFromStore(ctx, question)
	searchErr := g.Wait()

	if sqlErr != nil {
		return nil, o.fail(sqlErr)
	}
	if searchErr != nil {
		return nil, o.fail(searchErr)
	}

	if hits == nil {
		hits = []core.Chunk{}
	}
	result := &core.QueryResult{
		Question:       question,
		DocumentHits:   hits,
		GeneratedQuery: statement,
		Rows:           rows,
	}
	o.monitor.Finish(result)
	return result, nil
}

func (o *Orchestrator) answerFromStore(ctx context.Context, question string) (string, []core.Row, error) {
	snapshot, err := o.describer.Describe(ctx)
	if err != nil {
		return "", nil, core.Wrap(err, core.KindConnection, "failed to describe schema")
	}
	o.monitor.AfterDescribe(snapshot)
	if snapshot.IsEmpty() {
		return "", nil, core.ErrEmptySchema
	}

	statement, err := o.generator.GenerateQuery(ctx, question, snapshot)
	if err != nil {
		return "", nil, core.Wrap(err, core.KindGeneration, "failed to generate query")
	}
	statement = strings.TrimSpace(statement)
	o.monitor.AfterGenerate(statement)

	allowed := snapshot
	if !o.validateTables {
		allowed = nil
	}
	if err := Validate(statement, allowed); err != nil {
		o.logger.Warn("generated query rejected", "sql", statement, "err", err)
		return statement, nil, err
	}

	rows, err := o.executor.Query(ctx, statement)
	if err != nil {
		if pingErr := o.executor.Ping(ctx); pingErr != nil {
			return statement, nil, core.Wrap(pingErr, core.KindConnection, "store unreachable")
		}
		return statement, nil, core.Wrap(err, core.KindExecution, "failed to execute query")
	}
	if rows == nil {
		rows = []core.Row{}
	}
	o.monitor.AfterExecute(rows)
	return statement, rows, nil
}

func (o *Orchestrator) fail(err error) error {
	o.monitor.Failed(err)
	return err
}
