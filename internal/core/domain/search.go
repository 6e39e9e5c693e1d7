package domain

// QueryType classifies a query string to select a fusion weight profile.
type QueryType int

const (
	// QueryExactID is a structured document identifier (e.g. a case
	// citation). Identifier lookups bypass similarity search entirely.
	QueryExactID QueryType = iota

	// QueryKeyword is a short lexical lookup; sparse scores dominate.
	QueryKeyword

	// QuerySemantic is a natural-language question; dense scores dominate.
	QuerySemantic
)

// String returns a human-readable name for logging.
func (t QueryType) String() string {
	switch t {
	case QueryExactID:
		return "exact-id"
	case QueryKeyword:
		return "keyword"
	case QuerySemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// WeightProfile is an immutable pair of fusion weights selected by query
// type. Weights need not sum to 1 but are applied consistently within
// one fusion pass.
type WeightProfile struct {
	Dense  float64
	Sparse float64
}

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of document results.
	Limit int

	// ExcludeSourceID drops any candidate from the named document, so a
	// document is never returned as its own similar result.
	ExcludeSourceID string

	// Rerank enables the cross-encoder rerank stage when a reranker is
	// configured.
	Rerank bool
}

// SearchResponse is an ordered result set plus a completeness marker.
type SearchResponse struct {
	// Results are document results, best first. Empty when nothing
	// cleared the minimum score floor; that is not an error.
	Results []DocumentResult

	// Complete is false when a recoverable late-stage failure (e.g. a
	// reranker outage after fusion produced scores) forced the pipeline
	// to return partial or pre-rerank results.
	Complete bool
}
