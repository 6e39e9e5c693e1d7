package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexica-labs/lexrank/internal/core/domain"
)

var (
	similarLimit int
	similarJSON  bool
)

var similarCmd = &cobra.Command{
	Use:   "similar [document-id]",
	Short: "Find documents similar to a given document",
	Long: `Finds documents similar to the one identified by document-id, using
its indexed chunks as the probe. The document itself is excluded from
the results.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 10, "maximum number of results")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	sourceID := args[0]

	if similarService == nil {
		return errors.New("similar service not configured")
	}

	resp, err := similarService.Similar(cmd.Context(), sourceID, domain.SearchOptions{Limit: similarLimit})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("document %q is not indexed", sourceID)
		}
		return fmt.Errorf("similar search failed: %w", err)
	}

	if similarJSON {
		return outputResultsJSON(cmd, resp)
	}
	return outputResultsTable(cmd, resp)
}
