package driven

import (
	"context"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

// EmbeddingService generates dense vector embeddings from text.
//
// Embeddings must be deterministic for identical input text (aside from
// floating-point noise) so that caching stays valid. A provider failure
// (timeout, quota) is surfaced as a retryable error; implementations must
// never return a zero vector in place of an error.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call,
	// preserving input order. Bulk indexing must not serialise one item
	// at a time.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 1536, 3072).
	// This must match the VectorIndex configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// SparseEncoder produces BM25-style sparse lexical vectors over a fixed
// vocabulary space. Encoding is a pure function of the input text.
type SparseEncoder interface {
	// Encode produces a sparse vector for the given text.
	Encode(ctx context.Context, text string) (domain.SparseVector, error)

	// EncodeBatch encodes multiple texts, preserving input order.
	EncodeBatch(ctx context.Context, texts []string) ([]domain.SparseVector, error)

	// Name identifies the encoding scheme (e.g. "bm25").
	Name() string
}
