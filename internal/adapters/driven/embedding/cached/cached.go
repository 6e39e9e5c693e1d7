// Package cached wraps an embedding service with a bounded in-memory
// cache. Repeated queries hit the provider once.
package cached

import (
	"container/list"
	"context"
	"sync"

	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultCapacity is the number of embeddings kept when no capacity is given.
const DefaultCapacity = 512

type cacheEntry struct {
	text      string
	embedding []float32
}

// EmbeddingService is an LRU-caching decorator over another
// EmbeddingService. Safe for concurrent use.
type EmbeddingService struct {
	inner    driven.EmbeddingService
	capacity int

	mu    sync.Mutex
	order *list.List // front = most recently used
	index map[string]*list.Element
}

// NewEmbeddingService wraps inner with an LRU cache of the given
// capacity. A capacity <= 0 uses DefaultCapacity.
func NewEmbeddingService(inner driven.EmbeddingService, capacity int) *EmbeddingService {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EmbeddingService{
		inner:    inner,
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Embed returns the cached embedding for text, or delegates to the
// wrapped service and caches the result.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if embedding, ok := s.get(text); ok {
		return embedding, nil
	}

	embedding, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.put(text, embedding)
	return embedding, nil
}

// EmbedBatch serves cached texts locally and sends only the misses to
// the wrapped service in a single batch, preserving input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result := make([][]float32, len(texts))
	var missing []string
	var missingAt []int
	for i, text := range texts {
		if embedding, ok := s.get(text); ok {
			result[i] = embedding
			continue
		}
		missing = append(missing, text)
		missingAt = append(missingAt, i)
	}

	if len(missing) == 0 {
		return result, nil
	}

	fetched, err := s.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, embedding := range fetched {
		result[missingAt[j]] = embedding
		s.put(missing[j], embedding)
	}
	return result, nil
}

// Dimensions returns the wrapped service's embedding size.
func (s *EmbeddingService) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (s *EmbeddingService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates to the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close clears the cache and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	s.order.Init()
	s.index = make(map[string]*list.Element)
	s.mu.Unlock()
	return s.inner.Close()
}

func (s *EmbeddingService) get(text string) ([]float32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.index[text]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).embedding, true
}

func (s *EmbeddingService) put(text string, embedding []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.index[text]; ok {
		s.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).embedding = embedding
		return
	}

	elem := s.order.PushFront(&cacheEntry{text: text, embedding: embedding})
	s.index[text] = elem

	if s.order.Len() > s.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.index, oldest.Value.(*cacheEntry).text)
	}
}
