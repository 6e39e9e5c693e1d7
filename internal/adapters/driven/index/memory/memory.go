// Package memory provides an in-memory vector index for tests and
// experiments. Search is exhaustive; nothing is persisted.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
)

var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	chunk  domain.Chunk
	dense  []float32
	sparse domain.SparseVector
}

// Index stores chunks and their vectors in process memory. Safe for
// concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries map[string]*entry // keyed by chunk ID
}

// NewIndex creates an empty in-memory index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]*entry)}
}

// Upsert writes a chunk with both of its vectors.
func (x *Index) Upsert(ctx context.Context, chunk domain.Chunk, dense []float32, sparse domain.SparseVector) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[chunk.ID] = &entry{chunk: chunk, dense: dense, sparse: sparse}
	return nil
}

// Delete removes all chunks matching the filter.
func (x *Index) Delete(ctx context.Context, filter driven.Filter) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for id, e := range x.entries {
		if matches(e.chunk, filter) {
			delete(x.entries, id)
		}
	}
	return nil
}

// SearchDense finds the k nearest chunks by cosine similarity.
func (x *Index) SearchDense(ctx context.Context, query []float32, k int, filter driven.Filter) ([]driven.IndexHit, error) {
	return x.search(k, filter, func(e *entry) float64 {
		return cosine(query, e.dense)
	})
}

// SearchSparse finds the k best chunks by sparse dot product.
func (x *Index) SearchSparse(ctx context.Context, query domain.SparseVector, k int, filter driven.Filter) ([]driven.IndexHit, error) {
	return x.search(k, filter, func(e *entry) float64 {
		return sparseDot(query, e.sparse)
	})
}

func (x *Index) search(k int, filter driven.Filter, score func(*entry) float64) ([]driven.IndexHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var hits []driven.IndexHit
	for _, e := range x.entries {
		if !matches(e.chunk, filter) {
			continue
		}
		s := score(e)
		if s <= 0 {
			continue
		}
		hits = append(hits, driven.IndexHit{Chunk: e.chunk, Score: s})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.ID < hits[j].Chunk.ID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Scroll returns all chunks matching the filter in document order.
func (x *Index) Scroll(ctx context.Context, filter driven.Filter) ([]domain.Chunk, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var chunks []domain.Chunk
	for _, e := range x.entries {
		if matches(e.chunk, filter) {
			chunks = append(chunks, e.chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].SourceID != chunks[j].SourceID {
			return chunks[i].SourceID < chunks[j].SourceID
		}
		return chunks[i].SequenceIndex < chunks[j].SequenceIndex
	})
	return chunks, nil
}

// Close releases resources.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries = make(map[string]*entry)
	return nil
}

func matches(chunk domain.Chunk, filter driven.Filter) bool {
	if filter.SourceID != "" && chunk.SourceID != filter.SourceID {
		return false
	}
	if filter.Section != "" && chunk.Section != filter.Section {
		return false
	}
	return true
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sparseDot(a, b domain.SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += float64(a.Values[i]) * float64(b.Values[j])
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return dot
}
