// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the retrieval pipeline to function:
//
//   - EmbeddingService: Dense vector embeddings for query and chunk text
//   - SparseEncoder: BM25-style sparse vectors for lexical matching
//   - VectorIndex: Similarity search and exact-filter lookup over chunks
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - Reranker: Cross-encoder pairwise scoring for the final ordering.
//     Without it, the fused ranking is returned as-is.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
