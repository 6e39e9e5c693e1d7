package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

var (
	lawsLimit int
	lawsJSON  bool
)

var lawsCmd = &cobra.Command{
	Use:   "laws [query]",
	Short: "Search statute articles",
	Long: `Performs hybrid search across indexed statute articles. Results are
grouped per article clause, so several clauses of one article can
appear, capped per article. An article identifier is looked up directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runLaws,
}

func init() {
	lawsCmd.Flags().IntVarP(&lawsLimit, "limit", "n", 10, "maximum number of results")
	lawsCmd.Flags().BoolVar(&lawsJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(lawsCmd)
}

func runLaws(cmd *cobra.Command, args []string) error {
	query := args[0]

	if lawService == nil {
		return errors.New("law search service not configured")
	}

	resp, err := lawService.Search(cmd.Context(), query, domain.SearchOptions{Limit: lawsLimit})
	if err != nil {
		if errors.Is(err, domain.ErrMalformedQuery) {
			return fmt.Errorf("query too short or malformed: %w", err)
		}
		return fmt.Errorf("law search failed: %w", err)
	}

	if lawsJSON {
		return outputResultsJSON(cmd, resp)
	}
	return outputLawsTable(cmd, resp)
}

func outputLawsTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
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

		label := title
		if len(r.Chunks) > 0 && r.Chunks[0].Chunk.ClauseID != "" {
			label = fmt.Sprintf("%s, clause %s", title, r.Chunks[0].Chunk.ClauseID)
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, label, r.Score)
		if r.Snippet != "" {
			cmd.Printf("      %s\n", firstLine(r.Snippet))
		}
		cmd.Println()
	}
	return nil
}
