package domain

import "time"

// Chunk represents an indexed span of text from one source document.
// Source documents (court decisions, statute articles) are split into
// overlapping chunks at index time; chunks are immutable once written,
// and re-indexing a document replaces all of its chunks.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// SourceID identifies the owning document (case number, article ID).
	SourceID string

	// Section is the logical section label this chunk belongs to
	// (e.g. "holding", "reasoning", "summary").
	Section string

	// SequenceIndex is the chunk's position in original document order.
	// Unique within a SourceID; used to reconstruct document order and
	// to strip sliding-window overlap when chunks are concatenated.
	SequenceIndex int

	// ClauseID identifies the sub-unit of the document this chunk covers
	// (e.g. an article's clause number). Empty for whole-document chunks.
	ClauseID string

	// Content is the chunk's raw text.
	Content string

	// Title is the document title, denormalised onto the chunk so no
	// join is needed at read time.
	Title string

	// Authority is the issuing court or body, denormalised.
	Authority string

	// Date is the decision or enactment date, denormalised.
	Date time.Time

	// Metadata carries remaining document-level fields from the index payload.
	Metadata map[string]any
}

// SparseVector is a lexical (BM25-style) vector: parallel term indices
// and weights over a fixed vocabulary space.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// IsZero reports whether the vector carries no terms.
func (v SparseVector) IsZero() bool {
	return len(v.Indices) == 0
}

// ScoredCandidate is a chunk plus retrieval metadata. Created transiently
// per query; never persisted.
type ScoredCandidate struct {
	// Chunk is the retrieved chunk.
	Chunk Chunk

	// DenseScore is the raw dense similarity score. Nil when the chunk
	// was not returned by the dense retrieval leg.
	DenseScore *float64

	// SparseScore is the raw sparse similarity score. Nil when the chunk
	// was not returned by the sparse retrieval leg.
	SparseScore *float64

	// CombinedScore is the fusion output. Always set after fusion.
	CombinedScore float64

	// MatchedKeywords are query keywords found verbatim in the chunk text.
	MatchedKeywords []string
}

// DocumentResult is the final, deduplicated unit returned to a caller.
// The chunk aggregator guarantees at most one DocumentResult per SourceID
// in a result set.
type DocumentResult struct {
	// SourceID identifies the document.
	SourceID string

	// Title is the document title.
	Title string

	// Authority is the issuing court or body.
	Authority string

	// Date is the decision or enactment date.
	Date time.Time

	// Snippet is the representative content: the best chunk's text, or
	// the top chunks concatenated after overlap removal.
	Snippet string

	// Score is the document's best combined chunk score.
	Score float64

	// Chunks are the scored chunks that contributed to this result,
	// best first. Law search surfaces more than one per article.
	Chunks []ScoredCandidate
}

// ExactMatchScore is the fixed score assigned to results of the
// identifier lookup path, which bypasses similarity search entirely.
const ExactMatchScore = 1.0
