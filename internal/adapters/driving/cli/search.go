package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

var (
	searchLimit  int
	searchJSON   bool
	searchRerank bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed court decisions",
	Long: `Performs hybrid search across indexed court decisions.
Dense (semantic) and sparse (lexical) retrieval run in parallel; scores
are fused with weights chosen by query type. A case citation is looked
up directly without similarity search.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchRerank, "rerank", false, "rescore top candidates with the cross-encoder")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	opts := domain.SearchOptions{
		Limit:  searchLimit,
		Rerank: searchRerank,
	}

	resp, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedQuery) {
			return fmt.Errorf("query too short or malformed: %w", err)
		}
		if errors.Is(err, domain.ErrRerankerUnavailable) {
			return errors.New("--rerank requires a reranker endpoint; set reranker.endpoint in the config")
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputResultsJSON(cmd, resp)
	}
	return outputResultsTable(cmd, resp)
}

func outputResultsJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultsTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range resp.Results {
		title := r.Title
		if title == "" {
			title = r.SourceID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, r.Score)
		if r.Authority != "" {
			line := r.Authority
			if !r.Date.IsZero() {
				line += ", " + r.Date.Format("2006-01-02")
			}
			cmd.Printf("      %s\n", line)
		}
		if r.Snippet != "" {
			cmd.Printf("      %s\n", firstLine(r.Snippet))
		}
		cmd.Println()
	}

	if !resp.Complete {
		cmd.Println("Note: reranking was unavailable; results are in fusion order.")
	}
	return nil
}

// firstLine keeps table output one line per snippet; full text is
// available via --json.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
