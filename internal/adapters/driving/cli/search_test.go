package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "contract damages"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Results:")
	assert.Contains(t, buf.String(), "Acme v. Baker")
	assert.Contains(t, buf.String(), "Supreme Court, 2020-05-12")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--json", "contract damages"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"SourceID\"")
	assert.Contains(t, buf.String(), "\"Score\"")
	assert.Contains(t, buf.String(), "2020Da12345")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	oldService := searchService
	searchService = nil
	defer func() {
		searchService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{err: errServiceDown}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_MalformedQueryMessage(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{err: domain.ErrMalformedQuery}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "a"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "too short or malformed")
}

func TestSearchCmd_RerankWithoutRerankerMessage(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	searchService = &mockSearchService{err: domain.ErrRerankerUnavailable}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "--rerank", "contract damages"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchRerank = false // Reset flag
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reranker.endpoint")
}

func TestOutputResultsTable_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputResultsTable(rootCmd, &domain.SearchResponse{Complete: true})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found")
}

func TestOutputResultsTable_IncompleteNote(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	resp := sampleResponse()
	resp.Complete = false
	err := outputResultsTable(rootCmd, resp)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "reranking was unavailable")
}

func TestOutputResultsTable_FallsBackToSourceID(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	resp := &domain.SearchResponse{
		Results:  []domain.DocumentResult{{SourceID: "2021Da999", Score: 0.42}},
		Complete: true,
	}
	err := outputResultsTable(rootCmd, resp)

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "2021Da999")
	assert.Contains(t, buf.String(), "0.42")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "first", firstLine("first\nsecond"))
	assert.Equal(t, "only", firstLine("only"))
}
