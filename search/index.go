package search

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/poiesic/nlqengine/ai"
	"github.com/poiesic/nlqengine/core"
	"github.com/poiesic/nlqengine/extract"
	"github.com/poiesic/nlqengine/ingestion"
)

const (
	// DefaultTopK is the number of hits returned when k <= 0.
	DefaultTopK = 3

	// DefaultBatchSize is the number of chunks sent per embedding call.
	DefaultBatchSize = 32
)

// BuildReport summarizes a completed Build.
type BuildReport struct {
	Documents int           `json:"documents"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Chunks    int           `json:"chunks"`
	Cached    int           `json:"cached"`
	Elapsed   time.Duration `json:"elapsed"`
}

// state is the immutable result of a build.
// An empty chunk list is the explicit empty state.
type state struct {
	chunks  []core.Chunk
	vectors [][]float32
}

// Index provides exact L2 nearest-neighbor search over document chunks.
type Index struct {
	embedder  ai.Embedder
	registry  *extract.Registry
	cache     Cache
	model     string
	batchSize int
	topK      int
	workers   int
	monitor   BuildMonitor
	logger    *slog.Logger

	building atomic.Bool
	state    atomic.Pointer[state]
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per provider call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(idx *Index) error {
		if size < 1 {
			size = 1
		}
		idx.batchSize = size
		return nil
	}
}

// WithTopK sets the number of hits returned when Search is called with k <= 0.
// Default is 3.
func WithTopK(k int) Option {
	return func(idx *Index) error {
		if k < 1 {
			k = DefaultTopK
		}
		idx.topK = k
		return nil
	}
}

// WithWorkers sets the document decoding pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(n int) Option {
	return func(idx *Index) error {
		if n < 1 {
			n = 1
		}
		idx.workers = n
		return nil
	}
}

// WithRegistry sets the extractor registry used to decode documents.
// Default is extract.NewRegistry().
func WithRegistry(registry *extract.Registry) Option {
	return func(idx *Index) error {
		if registry == nil {
			return ingestion.ErrRegistryRequired
		}
		idx.registry = registry
		return nil
	}
}

// WithCache enables an embedding cache. Vectors are keyed by model and
// chunk text, so a cache shared between models never mixes vector spaces.
func WithCache(cache Cache, model string) Option {
	return func(idx *Index) error {
		idx.cache = cache
		idx.model = model
		return nil
	}
}

// WithMonitor sets a monitor that observes Build.
func WithMonitor(monitor BuildMonitor) Option {
	return func(idx *Index) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		idx.monitor = monitor
		return nil
	}
}

// New creates an inert index. Call Build before searching.
func New(embedder ai.Embedder, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}

	idx := &Index{
		embedder:  embedder,
		registry:  extract.NewRegistry(),
		batchSize: DefaultBatchSize,
		topK:      DefaultTopK,
		workers:   workers,
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(idx); err != nil {
			return nil, err
		}
	}

	idx.logger = idx.logger.With("component", "document-index")
	return idx, nil
}

// Build loads corpusDir, embeds every chunk and publishes the index.
//
// A corpus with no chunks settles into the empty state, which is not an
// error. Build succeeds at most once; later calls return ErrAlreadyBuilt.
// A failed Build leaves the index unbuilt.
func (idx *Index) Build(ctx context.Context, corpusDir string) (*BuildReport, error) {
	if !idx.building.CompareAndSwap(false, true) {
		return nil, ErrAlreadyBuilt
	}

	st, report, err := idx.build(ctx, corpusDir)
	if err != nil {
		idx.building.Store(false)
		return nil, err
	}

	idx.state.Store(st)
	idx.monitor.Finish(report)
	idx.logger.Info("document index built",
		"documents", report.Documents,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"chunks", report.Chunks,
		"cached", report.Cached,
		"elapsed", report.Elapsed)
	return report, nil
}

func (idx *Index) build(ctx context.Context, corpusDir string) (*state, *BuildReport, error) {
	started := time.Now()
	idx.monitor.Start(corpusDir)

	pipeline, err := ingestion.NewPipeline(
		ingestion.WithPoolSize(idx.workers),
		ingestion.WithRegistry(idx.registry),
		ingestion.WithLogger(idx.logger),
	)
	if err != nil {
		return nil, nil, err
	}
	defer pipeline.Release()

	corpus, err := pipeline.Load(ctx, corpusDir, idx.monitor.DocumentLoaded)
	if err != nil {
		return nil, nil, err
	}

	report := &BuildReport{
		Documents: len(corpus.Documents),
		Skipped:   corpus.Count(ingestion.DocumentSkipped),
		Failed:    corpus.Count(ingestion.DocumentFailed),
		Chunks:    len(corpus.Chunks),
	}

	st := &state{chunks: corpus.Chunks}
	if len(corpus.Chunks) == 0 {
		idx.logger.Warn("no chunks found, index is empty", "dir", corpusDir)
		report.Elapsed = time.Since(started)
		return st, report, nil
	}

	texts := make([]string, len(corpus.Chunks))
	for i, chunk := range corpus.Chunks {
		texts[i] = chunk.Content
	}

	bp := &batchProcessor{
		embedder:  idx.embedder,
		cache:     idx.cache,
		model:     idx.model,
		batchSize: idx.batchSize,
		logger:    idx.logger,
	}
	vectors, cached, err := bp.process(ctx, texts, idx.monitor)
	if err != nil {
		idx.logger.Error("error embedding chunks", "err", err)
		return nil, nil, err
	}

	st.vectors = vectors
	report.Cached = cached
	report.Elapsed = time.Since(started)
	return st, report, nil
}

// Built reports whether Build has completed successfully.
func (idx *Index) Built() bool {
	return idx.state.Load() != nil
}

// Len returns the number of indexed chunks, or 0 before Build.
func (idx *Index) Len() int {
	st := idx.state.Load()
	if st == nil {
		return 0
	}
	return len(st.chunks)
}

type candidate struct {
	index    int
	distance float32
}

// Search returns up to k chunks nearest to query, nearest first.
// k <= 0 uses the configured default.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]core.Chunk, error) {
	st := idx.state.Load()
	if st == nil {
		return nil, ErrIndexNotBuilt
	}
	if len(st.chunks) == 0 {
		return []core.Chunk{}, nil
	}
	if k <= 0 {
		k = idx.topK
	}

	embedding, err := idx.embedder.EmbedText(ctx, query)
	if err != nil {
		idx.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, core.Wrap(err, core.KindEmbedding, "failed to embed query")
	}
	if len(embedding) != len(st.vectors[0]) {
		return nil, core.Wrap(ErrDimensionMismatch, core.KindEmbedding, "query embedding does not match the index")
	}

	candidates := make([]candidate, len(st.vectors))
	for i, vector := range st.vectors {
		candidates[i] = candidate{index: i, distance: squaredL2(embedding, vector)}
	}
	// Stable sort keeps ascending ordinal order among equal distances
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	k = min(k, len(candidates))
	results := make([]core.Chunk, 0, k)
	for _, c := range candidates[:k] {
		if c.index < 0 || c.index >= len(st.chunks) {
			continue
		}
		results = append(results, st.chunks[c.index])
	}

	idx.logger.Debug("search complete", "query", query, "hits", len(results))
	return results, nil
}
