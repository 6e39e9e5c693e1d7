package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultTuning())

	tests := []struct {
		name  string
		query string
		want  domain.QueryType
	}{
		{"case citation", "2020Da12345", domain.QueryExactID},
		{"case citation with spaces", "2020 Da 12345", domain.QueryExactID},
		{"dashed citation", "2019-HNA-00321", domain.QueryExactID},
		{"natural question", "what happens when a tenant breaks a lease early", domain.QuerySemantic},
		{"long sentence with function words", "is the employer responsible for accidents during the commute", domain.QuerySemantic},
		{"domain term", "negligence standard", domain.QueryKeyword},
		{"domain suffix", "copyright infringement", domain.QueryKeyword},
		{"numbered section", "article 750", domain.QueryKeyword},
		{"section sign", "§ 839 requirements", domain.QueryKeyword},
		{"plain short query", "parking dispute neighbor", domain.QuerySemantic},
		{"bare suffix word alone", "law", domain.QuerySemantic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.query), "query %q", tt.query)
		})
	}
}

func TestClassifier_PrecedenceIDBeatsSentence(t *testing.T) {
	// A citation must never be classified semantically, no matter what
	// other rules might fire.
	c := NewClassifier(DefaultTuning())
	assert.Equal(t, domain.QueryExactID, c.Classify("2021Hu998"))
}

func TestClassifier_PrecedenceSentenceBeatsKeyword(t *testing.T) {
	// A long natural question containing a domain term must stay
	// semantic; one vocabulary hit does not make it a keyword lookup.
	c := NewClassifier(DefaultTuning())
	got := c.Classify("what is the statute of limitations for negligence claims against a hospital")
	assert.Equal(t, domain.QuerySemantic, got)
}

func TestClassifier_Profile(t *testing.T) {
	tuning := DefaultTuning()
	c := NewClassifier(tuning)

	assert.Equal(t, tuning.KeywordProfile, c.Profile(domain.QueryKeyword))
	assert.Equal(t, tuning.SemanticProfile, c.Profile(domain.QuerySemantic))
	// ExactID never fuses; the semantic profile is a harmless default.
	assert.Equal(t, tuning.SemanticProfile, c.Profile(domain.QueryExactID))
}

func TestClassifier_InvalidPatternSkipped(t *testing.T) {
	tuning := DefaultTuning()
	tuning.CitationPatterns = []string{`([`, `^\d{4}X\d+$`}

	c := NewClassifier(tuning)
	assert.Equal(t, domain.QueryExactID, c.Classify("2020X99"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"article", "750", "damages"}, tokenize("Article 750, damages!"))
	assert.Empty(t, tokenize("..."))
}
