package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/OldJii/mcp-dock-data/pkg/printer"
)

var (
	// outputDir overrides the configured output root when set.
	outputDir string
	// jsonOutput switches run summaries from text to JSON.
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "mcp-dock-data",
	Short: "MCP registry mirror",
	Long: `mcp-dock-data mirrors installable MCP server metadata from the
Smithery and official MCP registries into a static JSON dataset
(index.json plus one detail file per server) suitable for CDN delivery.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printer.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "",
		"output directory root (overrides MCP_DOCK_OUTPUT_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"print run summaries as JSON")

	rootCmd.AddCommand(officialCmd)
	rootCmd.AddCommand(smitheryCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(versionCmd)
}
