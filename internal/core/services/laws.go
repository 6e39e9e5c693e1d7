package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
	"github.com/lexica-labs/lexrank/internal/core/ports/driving"
	"github.com/lexica-labs/lexrank/internal/logger"
)

// Ensure LawSearchService implements the interface.
var _ driving.LawSearchService = (*LawSearchService)(nil)

// LawSearchService searches statute articles. It shares the precedent
// pipeline's retrieval spine but aggregates per (article, clause):
// two relevant sub-clauses of the same article are both useful results,
// a whole article next to its own clauses is not.
type LawSearchService struct {
	inner *SearchService
}

// NewLawSearchService creates a new law search service.
// The reranker is not used for article search.
func NewLawSearchService(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	sparse driven.SparseEncoder,
	tuning Tuning,
) *LawSearchService {
	return &LawSearchService{
		inner: NewSearchService(index, embedder, sparse, nil, tuning),
	}
}

// SetTuning replaces the ranking parameters. Safe to call while
// searches are in flight.
func (s *LawSearchService) SetTuning(t Tuning) {
	s.inner.SetTuning(t)
}

// Search runs classification, dual retrieval and per-article aggregation.
func (s *LawSearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Law Search")
	logger.Debug("Query: %q", query)

	tuning, classifier := s.inner.snapshot()

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
		return s.inner.exactLookup(ctx, query, limit, tuning)
	}

	fused, err := s.inner.retrieveFused(ctx, query, classifier.Profile(queryType), limit, tuning)
	if err != nil {
		return nil, err
	}

	results := AggregateArticles(fused, ArticleAggregateOptions{
		Limit:         limit,
		MaxPerArticle: tuning.MaxPerArticle,
	})
	logger.Debug("Aggregated to %d article results", len(results))

	return &domain.SearchResponse{Results: results, Complete: true}, nil
}
