// Package domain defines the core business entities for Lexrank.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: An indexed span of a source document
//   - ScoredCandidate: A chunk plus per-query retrieval scores
//   - DocumentResult: The deduplicated, ranked unit returned to callers
//   - QueryType / WeightProfile: Query classification and fusion weights
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
