package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
	"github.com/lexica-labs/lexrank/internal/core/ports/driving"
	"github.com/lexica-labs/lexrank/internal/logger"
)

// Ensure SimilarService implements the interface.
var _ driving.SimilarService = (*SimilarService)(nil)

// probeMaxChars caps the text used to embed a document for similarity
// probing. Summary sections are preferred because they compress the
// whole decision into one passage.
const probeMaxChars = 2000

// SimilarService finds documents similar to a given document. The two
// retrieval legs score on incomparable scales here (no query text, only
// document-to-document similarity), so ranks are fused with RRF instead
// of min-max weighting.
type SimilarService struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	sparse   driven.SparseEncoder

	// mu guards tuning against concurrent config reloads.
	mu     sync.RWMutex
	tuning Tuning
}

// NewSimilarService creates a new similar-documents service.
func NewSimilarService(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	sparse driven.SparseEncoder,
	tuning Tuning,
) *SimilarService {
	return &SimilarService{
		index:    index,
		embedder: embedder,
		sparse:   sparse,
		tuning:   tuning,
	}
}

// SetTuning replaces the ranking parameters. Safe to call while
// searches are in flight.
func (s *SimilarService) SetTuning(t Tuning) {
	s.mu.Lock()
	s.tuning = t
	s.mu.Unlock()
}

// Similar returns documents ranked by similarity to the document
// identified by sourceID, excluding the document itself.
func (s *SimilarService) Similar(
	ctx context.Context, sourceID string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Similar Documents")
	logger.Debug("Source: %q", sourceID)

	s.mu.RLock()
	tuning := s.tuning
	s.mu.RUnlock()

	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, fmt.Errorf("%w: empty source id", domain.ErrInvalidInput)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	chunks, err := s.index.Scroll(ctx, driven.Filter{SourceID: sourceID})
	if err != nil {
		return nil, fmt.Errorf("%w: load source document: %v", domain.ErrIndexUnavailable, err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: source document %q", domain.ErrNotFound, sourceID)
	}

	probe := probeText(chunks)
	logger.Debug("Probe text: %d bytes from %d chunks", len(probe), len(chunks))

	var (
		denseVec  []float32
		sparseVec domain.SparseVector
		denseErr  error
		sparseErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		denseVec, denseErr = s.embedder.Embed(ctx, probe)
	}()
	go func() {
		defer wg.Done()
		sparseVec, sparseErr = s.sparse.Encode(ctx, probe)
	}()
	wg.Wait()

	if denseErr != nil {
		return nil, fmt.Errorf("%w: dense embedding: %v", domain.ErrProviderUnavailable, denseErr)
	}
	if sparseErr != nil {
		return nil, fmt.Errorf("%w: sparse encoding: %v", domain.ErrProviderUnavailable, sparseErr)
	}

	k := limit * tuning.Fanout
	if k < limit {
		k = limit
	}

	var (
		denseHits  []driven.IndexHit
		sparseHits []driven.IndexHit
		denseHErr  error
		sparseHErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		denseHits, denseHErr = s.index.SearchDense(ctx, denseVec, k, driven.Filter{})
	}()
	go func() {
		defer wg.Done()
		sparseHits, sparseHErr = s.index.SearchSparse(ctx, sparseVec, k, driven.Filter{})
	}()
	wg.Wait()

	if denseHErr != nil {
		return nil, fmt.Errorf("%w: dense search: %v", domain.ErrIndexUnavailable, denseHErr)
	}
	if sparseHErr != nil {
		return nil, fmt.Errorf("%w: sparse search: %v", domain.ErrIndexUnavailable, sparseHErr)
	}

	fused := FuseRRF(denseHits, sparseHits, tuning.RRFK)
	logger.Debug("RRF fused %d dense + %d sparse hits to %d candidates",
		len(denseHits), len(sparseHits), len(fused))

	results := Aggregate(fused, AggregateOptions{
		ExcludeSourceID: sourceID,
		Limit:           limit,
		SnippetChunks:   tuning.SnippetChunks,
		OverlapWindow:   tuning.OverlapWindow,
	})

	return &domain.SearchResponse{Results: results, Complete: true}, nil
}

// probeText builds the text that represents the source document:
// summary-section chunks first, then leading chunks in document order,
// capped at probeMaxChars.
func probeText(chunks []domain.Chunk) string {
	ordered := make([]domain.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		iSummary := ordered[i].Section == "summary"
		jSummary := ordered[j].Section == "summary"
		if iSummary != jSummary {
			return iSummary
		}
		return ordered[i].SequenceIndex < ordered[j].SequenceIndex
	})

	var b strings.Builder
	for _, c := range ordered {
		if b.Len() >= probeMaxChars {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(c.Content)
	}

	text := b.String()
	if len(text) > probeMaxChars {
		text = text[:probeMaxChars]
	}
	return text
}
