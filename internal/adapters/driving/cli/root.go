// Package cli provides the lexrank command-line interface. Commands
// talk to the core services through the driving ports only; wiring
// happens in cmd/lexrank.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lexica-labs/lexrank/internal/core/ports/driven"
	"github.com/lexica-labs/lexrank/internal/core/ports/driving"
	"github.com/lexica-labs/lexrank/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by cmd/lexrank before Execute.
var (
	searchService  driving.SearchService
	lawService     driving.LawSearchService
	similarService driving.SimilarService
	configStore    driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "lexrank",
	Short: "Hybrid legal retrieval and ranking",
	Long: `Lexrank searches indexed court decisions and statutes with a hybrid
retrieval pipeline: dense (semantic) and sparse (lexical) search run in
parallel and their scores are fused per query type.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the commands need.
type Services struct {
	Search  driving.SearchService
	Laws    driving.LawSearchService
	Similar driving.SimilarService
	Config  driven.ConfigStore
}

// SetServices injects the service implementations. Must be called
// before Execute.
func SetServices(s Services) {
	searchService = s.Search
	lawService = s.Laws
	similarService = s.Similar
	configStore = s.Config
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
