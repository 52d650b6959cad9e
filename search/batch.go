package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/nlqengine/ai"
	"github.com/poiesic/nlqengine/core"
)

// Cache stores embedding vectors keyed by model and text.
type Cache interface {
	Get(ctx context.Context, model, text string) ([]float32, bool, error)
	Put(ctx context.Context, model, text string, vector []float32) error
}

// batchProcessor embeds chunk contents in fixed-size batches, consulting
// the cache first when one is configured.
type batchProcessor struct {
	embedder  ai.Embedder
	cache     Cache
	model     string
	batchSize int
	logger    *slog.Logger
}

// process returns one vector per text, in order, and how many came from
// the cache. Each provider call is attempted exactly once.
func (bp *batchProcessor) process(ctx context.Context, texts []string, monitor BuildMonitor) ([][]float32, int, error) {
	vectors := make([][]float32, len(texts))
	pending := make([]int, 0, len(texts))

	cached := 0
	for i, text := range texts {
		if bp.cache != nil {
			vector, ok, err := bp.cache.Get(ctx, bp.model, text)
			if err != nil {
				bp.logger.Warn("error reading embedding cache", "err", err)
			}
			if ok {
				vectors[i] = vector
				cached++
				continue
			}
		}
		pending = append(pending, i)
	}
	monitor.ChunksLoaded(len(texts), cached)

	for start := 0; start < len(pending); start += bp.batchSize {
		end := min(start+bp.batchSize, len(pending))
		batch := pending[start:end]

		batchTexts := make([]string, len(batch))
		for i, idx := range batch {
			batchTexts[i] = texts[idx]
		}

		embeddings, err := bp.embedder.EmbedTexts(ctx, batchTexts)
		if err != nil {
			return nil, cached, core.Wrap(err, core.KindEmbedding, "failed to embed document chunks")
		}
		if len(embeddings) != len(batch) {
			return nil, cached, core.Errorf(core.KindEmbedding, "embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
		}

		for i, idx := range batch {
			vectors[idx] = embeddings[i]
			if bp.cache != nil {
				if err := bp.cache.Put(ctx, bp.model, texts[idx], embeddings[i]); err != nil {
					bp.logger.Warn("error writing embedding cache", "err", err)
				}
			}
		}

		bp.logger.Debug("embedded batch", "done", end, "total", len(pending))
		monitor.BatchEmbedded(end, len(pending))
	}

	if err := checkDimensions(vectors); err != nil {
		return nil, cached, err
	}
	return vectors, cached, nil
}

// checkDimensions verifies every vector is non-empty and of equal length.
func checkDimensions(vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return core.Wrap(ErrDimensionMismatch, core.KindEmbedding,
				fmt.Sprintf("chunk %d has %d dimensions, expected %d", i, len(v), dim))
		}
	}
	return nil
}
