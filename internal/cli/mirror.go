package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OldJii/mcp-dock-data/internal/mirror/config"
	"github.com/OldJii/mcp-dock-data/internal/mirror/enrich"
	"github.com/OldJii/mcp-dock-data/internal/mirror/pipeline"
	"github.com/OldJii/mcp-dock-data/internal/mirror/record"
	"github.com/OldJii/mcp-dock-data/internal/mirror/source/official"
	"github.com/OldJii/mcp-dock-data/internal/mirror/source/smithery"
	"github.com/OldJii/mcp-dock-data/pkg/printer"
)

var officialCmd = &cobra.Command{
	Use:   "official",
	Short: "Mirror the official MCP registry",
	Long: `Fetches every server from the official MCP registry, deduplicates
versions, drops servers without an installable package, ranks the rest by
GitHub stars and writes the dataset under <output>/official.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOfficial(cmd.Context(), loadConfig())
	},
}

var smitheryCmd = &cobra.Command{
	Use:   "smithery",
	Short: "Mirror the Smithery registry",
	Long: `Fetches every server from the Smithery registry, resolves each to
its full document and writes the dataset under <output>/smithery.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSmithery(cmd.Context(), loadConfig())
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Mirror both registries sequentially",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if err := runOfficial(cmd.Context(), cfg); err != nil {
			return err
		}
		return runSmithery(cmd.Context(), cfg)
	},
}

// loadConfig resolves the effective configuration: environment first, then
// command-line overrides on top.
func loadConfig() *config.Config {
	cfg := config.NewConfig()
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg
}

func runOfficial(ctx context.Context, cfg *config.Config) error {
	if !jsonOutput {
		printer.PrintInfo("Mirroring the official MCP registry...")
	}

	src := official.NewClient(cfg.RegistryAPIBase, cfg.HTTPTimeout)
	src.PageSize = cfg.PageSize
	src.PageDelay = cfg.PageDelay
	src.ShowProgress = cfg.Verbose

	stars := enrich.NewStarFetcher(enrich.StarCache{}, cfg.GithubToken, cfg.GithubDelay)

	summary, err := pipeline.Run(ctx, src, stars, pipeline.Options{
		OutputDir:   cfg.OutputDir,
		Filter:      true,
		Enrich:      true,
		SortByStars: true,
		Purge:       true,
		Projection:  record.ProjectionOptions{WithStars: true},
	})
	if err != nil {
		return fmt.Errorf("official mirror failed: %w", err)
	}

	if !jsonOutput && summary.FilterStats != nil {
		if err := summary.FilterStats.Render(os.Stdout); err != nil {
			printer.PrintWarning(fmt.Sprintf("failed to render filter stats: %v", err))
		}
	}
	printSummary(summary)
	return nil
}

func runSmithery(ctx context.Context, cfg *config.Config) error {
	if !jsonOutput {
		printer.PrintInfo("Mirroring the Smithery registry...")
	}

	src := smithery.NewClient(cfg.SmitheryAPIBase, cfg.HTTPTimeout)
	src.PageSize = cfg.PageSize
	src.PageDelay = cfg.PageDelay
	src.ShowProgress = cfg.Verbose

	summary, err := pipeline.Run(ctx, src, nil, pipeline.Options{
		OutputDir:  cfg.OutputDir,
		Projection: record.ProjectionOptions{WithUseCount: true},
	})
	if err != nil {
		return fmt.Errorf("smithery mirror failed: %w", err)
	}

	if src.DetailFailures > 0 {
		printer.PrintWarning(fmt.Sprintf("%d servers skipped after failed detail fetches", src.DetailFailures))
	}
	printSummary(summary)
	return nil
}

var summaryPrinter = printer.New()

func printSummary(summary *pipeline.Summary) {
	if jsonOutput {
		if err := summaryPrinter.PrintJSON(summary); err != nil {
			printer.PrintWarning(fmt.Sprintf("failed to encode summary: %v", err))
		}
		return
	}
	printer.PrintSuccess(fmt.Sprintf("%s: fetched %d, unique %d, wrote %d detail files (%d failures)",
		summary.Source, summary.Fetched, summary.Unique, summary.DetailsWritten, summary.WriteFailures))
}
