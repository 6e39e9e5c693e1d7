package driving

import (
	"context"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

// SearchService provides hybrid precedent search for external actors.
type SearchService interface {
	// Search runs the full pipeline for a query string: classification,
	// dual retrieval, fusion, aggregation and the optional rerank stage.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}

// LawSearchService provides statute/article search. Unlike precedent
// search it may return more than one chunk per article, capped per
// (article, clause) group.
type LawSearchService interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}

// SimilarService finds documents similar to a given document.
type SimilarService interface {
	// Similar returns documents ranked by similarity to the document
	// identified by sourceID. The document itself is excluded.
	Similar(ctx context.Context, sourceID string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}
