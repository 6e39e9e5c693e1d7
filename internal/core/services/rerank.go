package services

import (
	"context"
	"sort"
	"strings"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/logger"
)

// rerankStage re-scores the top candidates with the cross-encoder and
// reorders by the blended score. Invoked only on a bounded candidate set
// for latency reasons, never on the full retrieved set.
//
// A reranker outage at this point is recoverable: fusion already
// produced a ranking, so the fused results are returned with
// Complete=false instead of failing the request.
func (s *SearchService) rerankStage(
	ctx context.Context, query string, results []domain.DocumentResult, limit int, tuning Tuning,
) (*domain.SearchResponse, error) {
	bounded := results
	if len(bounded) > tuning.RerankCandidates {
		bounded = bounded[:tuning.RerankCandidates]
	}
	logger.Section("Rerank")
	logger.Debug("Reranking %d candidates", len(bounded))

	texts := make([]string, len(bounded))
	for i := range bounded {
		texts[i] = rerankText(bounded[i], tuning.RerankMaxChars)
	}

	scores, err := s.reranker.ScorePairs(ctx, query, texts)
	if err != nil || len(scores) != len(bounded) {
		if err != nil {
			logger.Warn("Rerank failed, returning fused order: %v", err)
		} else {
			logger.Warn("Rerank returned %d scores for %d candidates, returning fused order", len(scores), len(bounded))
		}
		if len(results) > limit {
			results = results[:limit]
		}
		return &domain.SearchResponse{Results: results, Complete: false}, nil
	}

	// Cross-encoder scores are raw logits and can be negative, so they
	// are min-max normalized before the keyword bonus is added. A
	// multiplicative bonus would invert on a negative score.
	minScore, maxScore := scores[0], scores[0]
	for _, v := range scores[1:] {
		if v < minScore {
			minScore = v
		}
		if v > maxScore {
			maxScore = v
		}
	}
	scoreRange := maxScore - minScore
	if scoreRange == 0 {
		scoreRange = 1
	}

	reranked := make([]domain.DocumentResult, len(bounded))
	copy(reranked, bounded)
	for i := range reranked {
		norm := (scores[i] - minScore) / scoreRange
		reranked[i].Score = norm + keywordBonus(reranked[i], tuning)
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})

	if len(reranked) > limit {
		reranked = reranked[:limit]
	}
	return &domain.SearchResponse{Results: reranked, Complete: true}, nil
}

// keywordBonus converts a document's matched query keywords into a
// bounded additive bonus on the normalized rerank score. The blended
// score, not the raw rerank score, determines final order.
func keywordBonus(result domain.DocumentResult, tuning Tuning) float64 {
	matched := make(map[string]struct{})
	for _, c := range result.Chunks {
		for _, kw := range c.MatchedKeywords {
			matched[kw] = struct{}{}
		}
	}

	bonus := float64(len(matched)) * tuning.KeywordBonus
	if bonus > tuning.KeywordBonusCap {
		bonus = tuning.KeywordBonusCap
	}
	return bonus
}

// rerankText builds the candidate text for the cross-encoder: the
// document's top chunks concatenated, capped at maxChars. A single
// chunk is often too narrow for the pairwise scorer.
func rerankText(result domain.DocumentResult, maxChars int) string {
	if maxChars <= 0 {
		maxChars = 1500
	}

	var b strings.Builder
	for _, c := range result.Chunks {
		if b.Len() >= maxChars {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(c.Chunk.Content)
	}

	text := b.String()
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text
}
