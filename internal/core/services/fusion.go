package services

import (
	"sort"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
)

// fusionAccumulator merges candidates from the two retrieval legs while
// tracking first-seen order explicitly. Lookup goes through the map,
// ordering through the slice; nothing relies on map iteration order.
type fusionAccumulator struct {
	byID  map[string]*domain.ScoredCandidate
	order []string
}

func newFusionAccumulator(capacity int) *fusionAccumulator {
	return &fusionAccumulator{
		byID: make(map[string]*domain.ScoredCandidate, capacity),
	}
}

func (a *fusionAccumulator) get(hit driven.IndexHit) *domain.ScoredCandidate {
	id := hit.Chunk.ID
	if c, ok := a.byID[id]; ok {
		return c
	}
	c := &domain.ScoredCandidate{Chunk: hit.Chunk}
	a.byID[id] = c
	a.order = append(a.order, id)
	return c
}

// candidates returns the accumulated set in first-seen order.
func (a *fusionAccumulator) candidates() []domain.ScoredCandidate {
	out := make([]domain.ScoredCandidate, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.byID[id])
	}
	return out
}

// FuseWeighted merges the dense and sparse result lists with min-max
// normalisation and a weighted sum.
//
// Each list's raw scores are normalised independently to [0,1]; when all
// scores in a list tie, the range is taken as 1.0 to avoid a divide by
// zero. A chunk present in only one list contributes only that list's
// term - absence is not penalised further. Section weights boost chunks
// from authoritative sections before combining. Candidates below floor
// are discarded.
//
// Ties sort stably: original retrieval order (dense leg first) wins.
func FuseWeighted(
	dense, sparse []driven.IndexHit,
	weights domain.WeightProfile,
	sectionWeights map[string]float64,
	floor float64,
) []domain.ScoredCandidate {
	denseMin, denseRange := scoreRange(dense)
	sparseMin, sparseRange := scoreRange(sparse)

	acc := newFusionAccumulator(len(dense) + len(sparse))

	for _, hit := range dense {
		c := acc.get(hit)
		raw := hit.Score
		c.DenseScore = &raw
		normalized := (raw - denseMin) / denseRange
		c.CombinedScore += normalized * weights.Dense * sectionWeight(sectionWeights, hit.Chunk.Section)
	}

	for _, hit := range sparse {
		c := acc.get(hit)
		raw := hit.Score
		c.SparseScore = &raw
		normalized := (raw - sparseMin) / sparseRange
		c.CombinedScore += normalized * weights.Sparse * sectionWeight(sectionWeights, hit.Chunk.Section)
	}

	fused := acc.candidates()

	kept := fused[:0]
	for _, c := range fused {
		if c.CombinedScore >= floor {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CombinedScore > kept[j].CombinedScore
	})

	return kept
}

// FuseRRF merges the two lists by reciprocal rank: 1/(k+rank) with
// 1-based ranks, summed across lists. Raw similarity magnitudes are
// discarded, which keeps the fusion robust when the two methods' score
// distributions are not comparable (e.g. summary-embedding lookups).
func FuseRRF(dense, sparse []driven.IndexHit, k int) []domain.ScoredCandidate {
	if k <= 0 {
		k = 60
	}

	acc := newFusionAccumulator(len(dense) + len(sparse))

	for rank, hit := range dense {
		c := acc.get(hit)
		raw := hit.Score
		c.DenseScore = &raw
		c.CombinedScore += 1.0 / float64(k+rank+1)
	}

	for rank, hit := range sparse {
		c := acc.get(hit)
		raw := hit.Score
		c.SparseScore = &raw
		c.CombinedScore += 1.0 / float64(k+rank+1)
	}

	fused := acc.candidates()

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].CombinedScore > fused[j].CombinedScore
	})

	return fused
}

// scoreRange returns the minimum and the normalisation range of a hit
// list. The range is 1.0 when the list is empty or all scores tie.
func scoreRange(hits []driven.IndexHit) (min, rng float64) {
	if len(hits) == 0 {
		return 0, 1
	}

	min = hits[0].Score
	max := hits[0].Score
	for _, h := range hits[1:] {
		if h.Score < min {
			min = h.Score
		}
		if h.Score > max {
			max = h.Score
		}
	}

	rng = max - min
	if rng == 0 {
		rng = 1
	}
	return min, rng
}

func sectionWeight(weights map[string]float64, section string) float64 {
	if w, ok := weights[section]; ok && w > 0 {
		return w
	}
	return 1.0
}
