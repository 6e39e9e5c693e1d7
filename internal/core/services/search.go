package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
	"github.com/lexica-labs/lexrank/internal/core/ports/driving"
	"github.com/lexica-labs/lexrank/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultLimit is the result count used when the caller passes none.
const DefaultLimit = 10

// SearchService runs the hybrid precedent retrieval pipeline:
// classification, dual retrieval, weighted fusion, chunk aggregation and
// the optional rerank stage.
type SearchService struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	sparse   driven.SparseEncoder
	reranker driven.Reranker

	// mu guards tuning and classifier; config reloads replace both while
	// searches may be in flight.
	mu         sync.RWMutex
	classifier *Classifier
	tuning     Tuning
}

// NewSearchService creates a new search service.
// The reranker parameter is optional (can be nil).
func NewSearchService(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	sparse driven.SparseEncoder,
	reranker driven.Reranker,
	tuning Tuning,
) *SearchService {
	return &SearchService{
		index:      index,
		embedder:   embedder,
		sparse:     sparse,
		reranker:   reranker,
		classifier: NewClassifier(tuning),
		tuning:     tuning,
	}
}

// SetTuning replaces the ranking parameters and rebuilds the
// classifier. Safe to call while searches are in flight; each search
// works from the snapshot it took when it started.
func (s *SearchService) SetTuning(t Tuning) {
	c := NewClassifier(t)
	s.mu.Lock()
	s.tuning = t
	s.classifier = c
	s.mu.Unlock()
}

// snapshot returns the tuning and classifier for one query. Tuning
// values are never mutated after construction, only replaced, so the
// shallow copy is safe to read without the lock.
func (s *SearchService) snapshot() (Tuning, *Classifier) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tuning, s.classifier
}

// Search runs the full pipeline for a query string.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Precedent Search")
	logger.Debug("Query: %q", query)

	tuning, classifier := s.snapshot()

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < tuning.MinQueryLen {
		return nil, fmt.Errorf("%w: query shorter than %d runes", domain.ErrMalformedQuery, tuning.MinQueryLen)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	queryType := classifier.Classify(query)
	logger.Info("Query type: %s", queryType)

	if queryType == domain.QueryExactID {
		return s.exactLookup(ctx, query, limit, tuning)
	}

	fused, err := s.retrieveFused(ctx, query, classifier.Profile(queryType), limit, tuning)
	if err != nil {
		return nil, err
	}

	markMatchedKeywords(fused, query, classifier.functionWords)

	results := Aggregate(fused, AggregateOptions{
		ExcludeSourceID: opts.ExcludeSourceID,
		Limit:           limit,
		SnippetChunks:   tuning.SnippetChunks,
		OverlapWindow:   tuning.OverlapWindow,
	})
	logger.Debug("Aggregated to %d documents", len(results))

	if opts.Rerank && len(results) > 0 {
		if s.reranker == nil {
			// A transient outage mid-request degrades to fusion order;
			// asking for a rerank that was never configured is a caller
			// error and must not be silently ignored.
			return nil, fmt.Errorf("%w: no reranker configured", domain.ErrRerankerUnavailable)
		}
		return s.rerankStage(ctx, query, results, limit, tuning)
	}

	return &domain.SearchResponse{Results: results, Complete: true}, nil
}

// exactLookup serves structured-identifier queries with a direct filter
// lookup. Vector similarity is the wrong tool for exact-key matching,
// so this path never touches it; every hit gets the fixed maximal score.
func (s *SearchService) exactLookup(ctx context.Context, query string, limit int, tuning Tuning) (*domain.SearchResponse, error) {
	sourceID := strings.Join(strings.Fields(query), "")
	logger.Debug("Exact lookup: source=%q", sourceID)

	chunks, err := s.index.Scroll(ctx, driven.Filter{SourceID: sourceID})
	if err != nil {
		return nil, fmt.Errorf("%w: exact lookup: %v", domain.ErrIndexUnavailable, err)
	}
	logger.Debug("Exact lookup: %d chunks", len(chunks))

	candidates := make([]domain.ScoredCandidate, 0, len(chunks))
	for _, chunk := range chunks {
		candidates = append(candidates, domain.ScoredCandidate{
			Chunk:         chunk,
			CombinedScore: domain.ExactMatchScore,
		})
	}

	// Scores all tie, so snippet selection falls back to document order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Chunk.SequenceIndex < candidates[j].Chunk.SequenceIndex
	})

	results := Aggregate(candidates, AggregateOptions{
		Limit:         limit,
		SnippetChunks: tuning.SnippetChunks,
		OverlapWindow: tuning.OverlapWindow,
	})

	return &domain.SearchResponse{Results: results, Complete: true}, nil
}

// retrieveFused embeds the query, runs both retrieval legs and fuses
// them with the weight profile. The two embeds run concurrently, as do
// the two searches: neither reads the other's output, so correctness
// does not depend on the parallelism.
func (s *SearchService) retrieveFused(
	ctx context.Context, query string, profile domain.WeightProfile, limit int, tuning Tuning,
) ([]domain.ScoredCandidate, error) {
	var (
		denseVec  []float32
		sparseVec domain.SparseVector
		denseErr  error
		sparseErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		denseVec, denseErr = s.embedder.Embed(ctx, query)
	}()
	go func() {
		defer wg.Done()
		sparseVec, sparseErr = s.sparse.Encode(ctx, query)
	}()
	wg.Wait()

	if denseErr != nil {
		return nil, fmt.Errorf("%w: dense embedding: %v", domain.ErrProviderUnavailable, denseErr)
	}
	if sparseErr != nil {
		return nil, fmt.Errorf("%w: sparse encoding: %v", domain.ErrProviderUnavailable, sparseErr)
	}

	// Inflate per-leg depth: aggregation collapses chunks of one
	// document, so the post-dedup count must still meet the limit.
	k := limit * tuning.Fanout
	if k < limit {
		k = limit
	}
	logger.Debug("Dual retrieval: k=%d per leg", k)

	var (
		denseHits  []driven.IndexHit
		sparseHits []driven.IndexHit
		denseHErr  error
		sparseHErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		denseHits, denseHErr = s.index.SearchDense(ctx, denseVec, k, driven.Filter{})
	}()
	go func() {
		defer wg.Done()
		sparseHits, sparseHErr = s.index.SearchSparse(ctx, sparseVec, k, driven.Filter{})
	}()
	wg.Wait()

	if denseHErr != nil {
		return nil, fmt.Errorf("%w: dense search: %v", domain.ErrIndexUnavailable, denseHErr)
	}
	if sparseHErr != nil {
		return nil, fmt.Errorf("%w: sparse search: %v", domain.ErrIndexUnavailable, sparseHErr)
	}
	logger.Debug("Retrieved %d dense + %d sparse hits", len(denseHits), len(sparseHits))

	fused := FuseWeighted(denseHits, sparseHits, profile, tuning.SectionWeights, tuning.ScoreFloor)
	logger.Debug("Fused to %d candidates above floor %.2f", len(fused), tuning.ScoreFloor)

	return fused, nil
}

// markMatchedKeywords records which query keywords occur verbatim in
// each candidate's text. The rerank stage turns these into a bonus.
func markMatchedKeywords(candidates []domain.ScoredCandidate, query string, functionWords map[string]struct{}) {
	var keywords []string
	for _, tok := range tokenize(query) {
		if len(tok) < 2 {
			continue
		}
		if _, ok := functionWords[tok]; ok {
			continue
		}
		keywords = append(keywords, tok)
	}
	if len(keywords) == 0 {
		return
	}

	for i := range candidates {
		content := strings.ToLower(candidates[i].Chunk.Content)
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				candidates[i].MatchedKeywords = append(candidates[i].MatchedKeywords, kw)
			}
		}
	}
}
