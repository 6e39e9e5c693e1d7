package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lexica-labs/lexrank/internal/core/domain"
	"github.com/lexica-labs/lexrank/internal/logger"
)

// numberedSection matches "article 750", "section 12", "§ 839" style
// references, which mark a query as a lexical statute lookup.
var numberedSection = regexp.MustCompile(`(?i)(\barticle\b|\bsection\b|§)\s*\d+`)

// Classifier assigns a query type, which selects the fusion weight
// profile. Immutable after construction; safe for concurrent use.
type Classifier struct {
	citations     []*regexp.Regexp
	functionWords map[string]struct{}
	domainTerms   map[string]struct{}
	suffixes      []string
	sentenceLen   int

	keywordProfile  domain.WeightProfile
	semanticProfile domain.WeightProfile
}

// NewClassifier builds a classifier from tuning values.
// Invalid citation patterns are skipped with a warning rather than
// failing construction; the defaults always compile.
func NewClassifier(t Tuning) *Classifier {
	c := &Classifier{
		functionWords:   make(map[string]struct{}, len(t.FunctionWords)),
		domainTerms:     make(map[string]struct{}, len(t.DomainTerms)),
		suffixes:        t.DomainSuffixes,
		sentenceLen:     t.SentenceLen,
		keywordProfile:  t.KeywordProfile,
		semanticProfile: t.SemanticProfile,
	}

	for _, p := range t.CitationPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			logger.Warn("Classifier: skipping invalid citation pattern %q: %v", p, err)
			continue
		}
		c.citations = append(c.citations, re)
	}

	for _, w := range t.FunctionWords {
		c.functionWords[strings.ToLower(w)] = struct{}{}
	}
	for _, term := range t.DomainTerms {
		c.domainTerms[strings.ToLower(term)] = struct{}{}
	}

	return c
}

// Classify assigns a query type. The precedence is deliberate:
// structured identifiers must never be treated as semantic queries, and
// a long natural-language question must not fall into the keyword class
// just because it contains one domain term.
//
//  1. Citation pattern match -> ExactID
//  2. Sentence length + function words -> Semantic
//  3. Domain term, suffix or numbered section -> Keyword
//  4. Default -> Semantic
func (c *Classifier) Classify(query string) domain.QueryType {
	q := strings.TrimSpace(query)

	if c.isCitation(q) {
		return domain.QueryExactID
	}

	if utf8.RuneCountInString(q) > c.sentenceLen && c.hasFunctionWord(q) {
		return domain.QuerySemantic
	}

	if c.hasDomainVocabulary(q) {
		return domain.QueryKeyword
	}

	return domain.QuerySemantic
}

// Profile maps a query type to its fusion weight profile.
// ExactID has no profile; its lookup path never fuses.
func (c *Classifier) Profile(t domain.QueryType) domain.WeightProfile {
	if t == domain.QueryKeyword {
		return c.keywordProfile
	}
	return c.semanticProfile
}

// isCitation reports whether the whole query is a structured document
// identifier. Internal whitespace is stripped first so "2020 Da 12345"
// still matches.
func (c *Classifier) isCitation(q string) bool {
	compact := strings.Join(strings.Fields(q), "")
	if compact == "" {
		return false
	}
	for _, re := range c.citations {
		if re.MatchString(compact) {
			return true
		}
	}
	return false
}

func (c *Classifier) hasFunctionWord(q string) bool {
	for _, tok := range tokenize(q) {
		if _, ok := c.functionWords[tok]; ok {
			return true
		}
	}
	return false
}

func (c *Classifier) hasDomainVocabulary(q string) bool {
	if numberedSection.MatchString(q) {
		return true
	}

	for _, tok := range tokenize(q) {
		if _, ok := c.domainTerms[tok]; ok {
			return true
		}
		for _, suffix := range c.suffixes {
			if tok == suffix {
				continue // the bare suffix word alone is not a domain term
			}
			if strings.HasSuffix(tok, suffix) {
				return true
			}
		}
	}
	return false
}

// tokenize lowercases and splits on non-letter/digit boundaries.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r > 127: // non-ASCII letters stay inside tokens
		return true
	}
	return false
}
