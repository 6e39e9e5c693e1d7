package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrMalformedQuery indicates the query string is empty or below the
	// minimum usable length. Rejected before any provider call is made.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrProviderUnavailable indicates the embedding provider is
	// unreachable or timed out. Retryable; the pipeline never falls back
	// to a zero vector, which would corrupt ranking silently.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrIndexUnavailable indicates the vector index cannot be reached.
	// Surfaced to the caller, never masked by a degraded ranking.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrRerankerUnavailable indicates the reranker endpoint is
	// unreachable. Recoverable when fusion already produced scores: the
	// pipeline returns the fused ranking with Complete=false.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
