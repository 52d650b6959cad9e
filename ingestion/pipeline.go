package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/extract"
)

// Pipeline orchestrates decoding of a corpus directory.
// Documents are decoded concurrently on a worker pool.
type Pipeline struct {
	registry *extract.Registry
	pool     *ants.Pool
	proc     *processor
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent decoding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithRegistry sets the extractor registry.
// Default is extract.NewRegistry().
func WithRegistry(registry *extract.Registry) Option {
	return func(p *Pipeline) error {
		if registry == nil {
			return ErrRegistryRequired
		}
		p.registry = registry
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		registry: extract.NewRegistry(),
		pool:     pool,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.proc = newProcessor(p.registry, p.logger)
	return p, nil
}

// Corpus is the ordered result of loading a directory.
type Corpus struct {
	// Documents holds one entry per regular file, in directory order.
	Documents []Document
	// Chunks holds every paragraph with ordinals 0..len(Chunks)-1.
	Chunks []core.Chunk
}

// Count returns the number of documents with the given status.
func (c *Corpus) Count(status DocumentStatus) int {
	n := 0
	for _, doc := range c.Documents {
		if doc.Status == status {
			n++
		}
	}
	return n
}

// Load decodes every regular file at the top level of dir.
//
// Subdirectories are ignored. Unsupported formats and decode failures are
// recorded on the returned documents and never fail the load. observe, when
// non-nil, is called once per document in directory order after all
// decoding has finished.
func (p *Pipeline) Load(ctx context.Context, dir string, observe func(Document)) (*Corpus, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, core.Wrap(err, core.KindConfiguration, fmt.Sprintf("cannot read corpus directory %q", dir))
	}
	if !info.IsDir() {
		return nil, core.Wrap(ErrCorpusNotDirectory, core.KindConfiguration, dir)
	}

	// os.ReadDir returns entries sorted by filename
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, core.Wrap(err, core.KindConfiguration, fmt.Sprintf("cannot list corpus directory %q", dir))
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	p.logger.Info("loading corpus", "dir", dir, "documents", len(paths))

	documents := make([]Document, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			documents[i] = p.proc.process(ctx, path)
		})
		if submitErr != nil {
			wg.Done()
			p.logger.Warn("worker pool rejected document, decoding inline", "document", filepath.Base(path), "err", submitErr)
			documents[i] = p.proc.process(ctx, path)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	corpus := &Corpus{Documents: documents}
	for _, doc := range documents {
		for _, paragraph := range doc.Paragraphs {
			corpus.Chunks = append(corpus.Chunks, core.Chunk{
				Source:  doc.Name,
				Content: paragraph,
				Ordinal: len(corpus.Chunks),
			})
		}
		if observe != nil {
			observe(doc)
		}
	}

	p.logger.Info("corpus loaded",
		"decoded", corpus.Count(DocumentDecoded),
		"skipped", corpus.Count(DocumentSkipped),
		"failed", corpus.Count(DocumentFailed),
		"chunks", len(corpus.Chunks))
	return corpus, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
