package driven

import (
	"context"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

// Filter restricts an index operation to chunks with matching payload
// fields. A zero filter matches everything.
type Filter struct {
	// SourceID matches chunks of one document exactly.
	SourceID string

	// Section matches chunks of one logical section exactly.
	Section string
}

// IndexHit is a similarity search result. The adapter converts the
// index's untyped payload into a typed Chunk at this boundary; untyped
// maps never propagate into fusion or aggregation.
type IndexHit struct {
	// Chunk is the matched chunk, hydrated from the point payload.
	Chunk domain.Chunk

	// Score is the raw similarity score from the index, on whatever
	// scale the retrieval method uses.
	Score float64
}

// VectorIndex provides similarity search and exact-filter lookup over
// indexed chunks. Backed by Qdrant in production; SQLite and in-memory
// implementations exist for local use and tests.
//
// Dense and sparse searches share no mutable state and are safe to run
// concurrently.
type VectorIndex interface {
	// Upsert writes a chunk with both of its vectors. Re-indexing a
	// document replaces all of its chunks.
	Upsert(ctx context.Context, chunk domain.Chunk, dense []float32, sparse domain.SparseVector) error

	// Delete removes all chunks matching the filter.
	Delete(ctx context.Context, filter Filter) error

	// SearchDense finds the k nearest chunks by dense similarity.
	SearchDense(ctx context.Context, query []float32, k int, filter Filter) ([]IndexHit, error)

	// SearchSparse finds the k best chunks by sparse (lexical) similarity.
	SearchSparse(ctx context.Context, query domain.SparseVector, k int, filter Filter) ([]IndexHit, error)

	// Scroll returns all chunks matching the filter without similarity
	// scoring. Used by the exact-identifier lookup path.
	Scroll(ctx context.Context, filter Filter) ([]domain.Chunk, error)

	// Close releases resources.
	Close() error
}
