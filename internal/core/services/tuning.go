package services

import (
	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
)

// Tuning holds the ranking knobs of the pipeline. The thresholds, term
// lists and patterns are domain-tuned heuristics, so all of them load
// from configuration rather than living as hardcoded constants.
type Tuning struct {
	// KeywordProfile weights fusion for short lexical queries.
	KeywordProfile domain.WeightProfile

	// SemanticProfile weights fusion for natural-language queries.
	SemanticProfile domain.WeightProfile

	// SectionWeights boosts chunks from authoritative sections
	// (e.g. holding, summary) before fusion combines scores.
	SectionWeights map[string]float64

	// ScoreFloor is the absolute minimum combined score. Candidates
	// below it are discarded so low-confidence long-tail matches do not
	// dilute results.
	ScoreFloor float64

	// RRFK is the reciprocal rank fusion smoothing constant.
	RRFK int

	// Fanout inflates per-leg retrieval depth relative to the requested
	// result count, so the count after deduplication still meets it.
	Fanout int

	// MinQueryLen is the minimum usable query length in runes.
	MinQueryLen int

	// SentenceLen is the rune length beyond which a query containing
	// function words is treated as a natural sentence.
	SentenceLen int

	// FunctionWords are grammatical words typical of natural sentences.
	FunctionWords []string

	// DomainTerms are curated legal vocabulary hits for the keyword class.
	DomainTerms []string

	// DomainSuffixes classify single terms like "...law" or "...right".
	DomainSuffixes []string

	// CitationPatterns are regular expressions for structured document
	// identifiers (year + category + serial).
	CitationPatterns []string

	// OverlapWindow bounds the suffix/prefix overlap search when
	// concatenating adjacent chunks, in bytes.
	OverlapWindow int

	// SnippetChunks is how many top chunks form a document snippet.
	SnippetChunks int

	// MaxPerArticle caps chunks per (article, clause) group in law search.
	MaxPerArticle int

	// RerankCandidates bounds the candidate set passed to the reranker.
	RerankCandidates int

	// RerankMaxChars caps the concatenated candidate text per document.
	RerankMaxChars int

	// KeywordBonus is the post-rerank score bonus per matched keyword.
	KeywordBonus float64

	// KeywordBonusCap caps the total keyword bonus.
	KeywordBonusCap float64
}

// DefaultTuning returns the shipped defaults. They match the values the
// ranking was originally tuned with; deployments override them in the
// config file.
func DefaultTuning() Tuning {
	return Tuning{
		KeywordProfile:  domain.WeightProfile{Dense: 0.3, Sparse: 0.7},
		SemanticProfile: domain.WeightProfile{Dense: 0.55, Sparse: 0.45},
		SectionWeights: map[string]float64{
			"holding": 1.3,
			"summary": 1.3,
		},
		ScoreFloor: 0.15,
		RRFK:       60,
		Fanout:     3,

		MinQueryLen: 2,
		SentenceLen: 20,
		FunctionWords: []string{
			"a", "an", "the", "is", "are", "was", "were", "do", "does",
			"did", "what", "when", "whether", "how", "who", "why", "can",
			"could", "should", "would", "of", "for", "with", "under",
		},
		DomainTerms: []string{
			"negligence", "liability", "damages", "contract", "tort",
			"statute", "precedent", "plaintiff", "defendant", "appeal",
			"injunction", "custody", "inheritance", "lease", "dismissal",
			"severance", "compensation", "fraud", "defamation",
		},
		DomainSuffixes: []string{"law", "act", "code", "right", "rights", "duty"},
		CitationPatterns: []string{
			`^\d{4}[A-Za-z]{1,4}\d{1,6}$`,
			`^\d{4}-[A-Za-z]{2,4}-\d{3,6}$`,
		},

		OverlapWindow: 150,
		SnippetChunks: 3,
		MaxPerArticle: 2,

		RerankCandidates: 30,
		RerankMaxChars:   1500,
		KeywordBonus:     0.10,
		KeywordBonusCap:  0.30,
	}
}

// TuningFromConfig overlays configured values onto the defaults.
// Missing keys keep their default.
func TuningFromConfig(cfg driven.ConfigStore) Tuning {
	t := DefaultTuning()
	if cfg == nil {
		return t
	}

	if v, ok := cfg.GetFloat("ranking.keyword_dense_weight"); ok {
		t.KeywordProfile.Dense = v
	}
	if v, ok := cfg.GetFloat("ranking.keyword_sparse_weight"); ok {
		t.KeywordProfile.Sparse = v
	}
	if v, ok := cfg.GetFloat("ranking.semantic_dense_weight"); ok {
		t.SemanticProfile.Dense = v
	}
	if v, ok := cfg.GetFloat("ranking.semantic_sparse_weight"); ok {
		t.SemanticProfile.Sparse = v
	}
	if v := cfg.GetFloatMap("ranking.section_weights"); len(v) > 0 {
		t.SectionWeights = v
	}
	if v, ok := cfg.GetFloat("ranking.score_floor"); ok {
		t.ScoreFloor = v
	}
	if v := cfg.GetInt("ranking.rrf_k"); v > 0 {
		t.RRFK = v
	}
	if v := cfg.GetInt("ranking.fanout"); v > 0 {
		t.Fanout = v
	}
	if v := cfg.GetInt("ranking.min_query_len"); v > 0 {
		t.MinQueryLen = v
	}
	if v := cfg.GetInt("classifier.sentence_length"); v > 0 {
		t.SentenceLen = v
	}
	if v := cfg.GetStringSlice("classifier.function_words"); len(v) > 0 {
		t.FunctionWords = v
	}
	if v := cfg.GetStringSlice("classifier.domain_terms"); len(v) > 0 {
		t.DomainTerms = v
	}
	if v := cfg.GetStringSlice("classifier.domain_suffixes"); len(v) > 0 {
		t.DomainSuffixes = v
	}
	if v := cfg.GetStringSlice("classifier.citation_patterns"); len(v) > 0 {
		t.CitationPatterns = v
	}
	if v := cfg.GetInt("snippet.overlap_window"); v > 0 {
		t.OverlapWindow = v
	}
	if v := cfg.GetInt("snippet.chunks"); v > 0 {
		t.SnippetChunks = v
	}
	if v := cfg.GetInt("laws.max_per_article"); v > 0 {
		t.MaxPerArticle = v
	}
	if v := cfg.GetInt("rerank.candidates"); v > 0 {
		t.RerankCandidates = v
	}
	if v := cfg.GetInt("rerank.max_chars"); v > 0 {
		t.RerankMaxChars = v
	}
	if v, ok := cfg.GetFloat("rerank.keyword_bonus"); ok {
		t.KeywordBonus = v
	}
	if v, ok := cfg.GetFloat("rerank.keyword_bonus_cap"); ok {
		t.KeywordBonusCap = v
	}

	return t
}
