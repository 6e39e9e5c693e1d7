package services

import (
	"sort"
	"strings"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

// AggregateOptions configures document-level aggregation.
type AggregateOptions struct {
	// ExcludeSourceID drops every chunk of the named document before
	// grouping, so a document never appears as its own similar result.
	ExcludeSourceID string

	// Limit truncates the result list. Zero means no truncation.
	Limit int

	// SnippetChunks is how many of a document's best chunks form its
	// snippet. Values below 1 fall back to 1.
	SnippetChunks int

	// OverlapWindow bounds the overlap search when concatenating
	// adjacent chunks, in bytes.
	OverlapWindow int
}

// Aggregate groups scored chunks into one DocumentResult per source
// document.
//
// The document score is the maximum combined score among its chunks:
// winner-take-all, because one strongly matching passage should surface
// the whole document even when its other chunks are irrelevant. The
// snippet concatenates the document's top chunks in original document
// order, stripping the sliding-window overlap the indexer introduced.
func Aggregate(candidates []domain.ScoredCandidate, opts AggregateOptions) []domain.DocumentResult {
	snippetChunks := opts.SnippetChunks
	if snippetChunks < 1 {
		snippetChunks = 1
	}

	groups := make(map[string][]domain.ScoredCandidate)
	var order []string

	for _, c := range candidates {
		sid := c.Chunk.SourceID
		if sid == "" || sid == opts.ExcludeSourceID {
			continue
		}
		if _, ok := groups[sid]; !ok {
			order = append(order, sid)
		}
		groups[sid] = append(groups[sid], c)
	}

	results := make([]domain.DocumentResult, 0, len(order))
	for _, sid := range order {
		chunks := groups[sid]

		// Best chunk first; it supplies the denormalised metadata.
		sort.SliceStable(chunks, func(i, j int) bool {
			return chunks[i].CombinedScore > chunks[j].CombinedScore
		})
		best := chunks[0]

		results = append(results, domain.DocumentResult{
			SourceID:  sid,
			Title:     best.Chunk.Title,
			Authority: best.Chunk.Authority,
			Date:      best.Chunk.Date,
			Snippet:   buildSnippet(chunks, snippetChunks, opts.OverlapWindow),
			Score:     best.CombinedScore,
			Chunks:    chunks,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

// ArticleAggregateOptions configures per-article aggregation for law
// search, where showing two clauses of one article is useful but ten is
// noise.
type ArticleAggregateOptions struct {
	// Limit truncates the flattened result list. Zero means no truncation.
	Limit int

	// MaxPerArticle caps surviving chunks per (source, clause) group.
	MaxPerArticle int
}

// AggregateArticles keeps at most MaxPerArticle chunks per
// (SourceID, ClauseID) group instead of collapsing each document to one
// winner. A whole-article chunk (empty ClauseID) survives only when no
// clause-level chunk of the same article did, so the article and its own
// sub-clauses are never shown together.
func AggregateArticles(candidates []domain.ScoredCandidate, opts ArticleAggregateOptions) []domain.DocumentResult {
	maxPer := opts.MaxPerArticle
	if maxPer < 1 {
		maxPer = 1
	}

	type groupKey struct {
		sourceID string
		clauseID string
	}

	groups := make(map[groupKey][]domain.ScoredCandidate)
	var order []groupKey
	clauseBearing := make(map[string]bool) // sourceID -> has clause-level chunks

	for _, c := range candidates {
		if c.Chunk.SourceID == "" {
			continue
		}
		key := groupKey{sourceID: c.Chunk.SourceID, clauseID: c.Chunk.ClauseID}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
		if c.Chunk.ClauseID != "" {
			clauseBearing[c.Chunk.SourceID] = true
		}
	}

	var flattened []domain.ScoredCandidate
	for _, key := range order {
		if key.clauseID == "" && clauseBearing[key.sourceID] {
			continue // parent article is redundant next to its clauses
		}

		members := groups[key]
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].CombinedScore > members[j].CombinedScore
		})
		if len(members) > maxPer {
			members = members[:maxPer]
		}
		flattened = append(flattened, members...)
	}

	sort.SliceStable(flattened, func(i, j int) bool {
		return flattened[i].CombinedScore > flattened[j].CombinedScore
	})

	results := make([]domain.DocumentResult, 0, len(flattened))
	for _, c := range flattened {
		results = append(results, domain.DocumentResult{
			SourceID:  c.Chunk.SourceID,
			Title:     c.Chunk.Title,
			Authority: c.Chunk.Authority,
			Date:      c.Chunk.Date,
			Snippet:   c.Chunk.Content,
			Score:     c.CombinedScore,
			Chunks:    []domain.ScoredCandidate{c},
		})
	}

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

// buildSnippet concatenates the document's top-scoring chunks in
// original document order, removing duplicated overlap between
// neighbours.
func buildSnippet(chunks []domain.ScoredCandidate, topN, window int) string {
	if len(chunks) == 0 {
		return ""
	}
	if topN > len(chunks) {
		topN = len(chunks)
	}

	// chunks arrive sorted by score; take the winners, then restore
	// document order so the snippet reads naturally.
	selected := make([]domain.ScoredCandidate, topN)
	copy(selected, chunks[:topN])
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Chunk.SequenceIndex < selected[j].Chunk.SequenceIndex
	})

	var b strings.Builder
	b.WriteString(selected[0].Chunk.Content)
	for i := 1; i < len(selected); i++ {
		prev := selected[i-1].Chunk.Content
		stripped, overlapped := stripOverlap(prev, selected[i].Chunk.Content, window)
		if overlapped && stripped == "" {
			continue // fully contained in the previous chunk
		}
		if !overlapped {
			// disjoint passages get a visible boundary
			b.WriteString("\n")
		}
		b.WriteString(stripped)
	}
	return b.String()
}

// stripOverlap removes the duplicated prefix from next: the longest
// suffix of prev (searched within the trailing window bytes) that is
// also a prefix of next. Chunks are produced with an overlapping
// sliding window at index time, so naive concatenation would repeat
// that span. The boolean reports whether an overlap was found.
func stripOverlap(prev, next string, window int) (string, bool) {
	if window <= 0 {
		window = 150
	}

	tail := prev
	if len(tail) > window {
		tail = tail[len(tail)-window:]
	}

	// Longest overlap wins; scan from the full tail down.
	for i := 0; i < len(tail); i++ {
		candidate := tail[i:]
		if strings.HasPrefix(next, candidate) {
			return next[len(candidate):], true
		}
	}
	return next, false
}
