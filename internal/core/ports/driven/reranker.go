package driven

import "context"

// Reranker scores (query, text) pairs with a cross-encoder model,
// independent of the original retrieval scores. This is an optional
// service - when nil, the rerank stage is skipped.
//
// Reranking is only ever invoked on a bounded candidate set (top few
// dozen) for latency reasons, never on the full retrieved set.
type Reranker interface {
	// ScorePairs returns one relevance score per candidate text, in the
	// same order as the input.
	ScorePairs(ctx context.Context, query string, texts []string) ([]float64, error)

	// Ping validates the endpoint is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
