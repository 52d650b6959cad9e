package ai

import (
	"context"

	"github.com/poiesic/nlqengine/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryGenerator translates a natural-language question into a single SQL
// statement grounded in a schema snapshot.
// Implementations must be thread-safe for concurrent use.
type QueryGenerator interface {
	// GenerateQuery returns one SQL statement answering question using only
	// the tables and columns of schema. The call is attempted exactly once.
	// Provider failures and unusable output are reported as errors.
	GenerateQuery(ctx context.Context, question string, schema *core.SchemaSnapshot) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and QueryGenerator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// QueryGenerator returns the natural-language to SQL service.
	// The returned QueryGenerator is safe for concurrent use.
	QueryGenerator() QueryGenerator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
