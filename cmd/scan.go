package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/flanksource/colorize/analysis"
	"github.com/flanksource/colorize/colorizer"
	"github.com/flanksource/colorize/config"
	"github.com/flanksource/colorize/internal/schedule"
	"github.com/flanksource/colorize/models"
	"github.com/flanksource/colorize/renderer"
)

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Scan a workspace once and report every color annotation found",
	Long: `Walk the workspace, extract color literals from every matching file and
print the resulting annotations as terminal swatches.

Per-file failures (unreadable files, files over the size ceiling) are
collected and summarized; they never abort the scan.

Examples:
  # Scan the current directory
  colorize scan

  # Scan a specific directory
  colorize scan ./styles`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	workDir := "."
	if len(args) > 0 {
		workDir = args[0]
	}
	absWorkDir, err := filepath.Abs(workDir)
	if err != nil {
		absWorkDir = workDir
	}

	cfg, err := config.Load(absWorkDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	scanner := analysis.NewScanner()
	result, err := scanner.Scan(cmd.Context(), absWorkDir, analysis.ScanOptions{
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		MaxFileSize: cfg.MaxFileSize,
		BatchSize:   cfg.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", absWorkDir, err)
	}

	extractor := analysis.NewRegexExtractor(cfg.Languages, cfg.MaxFileSize)
	orch := colorizer.NewOrchestrator(cfg, extractor, renderer.NewTerminalRenderer(os.Stdout), schedule.NewClock())
	defer orch.Close()

	for _, file := range result.Files {
		orch.HandleEvent(colorizer.Event{
			Kind:    colorizer.EventOpened,
			Doc:     file.Path,
			Content: file.Content,
		})
	}
	orch.Flush()

	printScanSummary(orch, result, cfg.MaxFileSize)
	return nil
}

func printScanSummary(orch *colorizer.Orchestrator, result *models.ScanResult, maxFileSize int64) {
	stats := orch.CacheStats()
	fmt.Printf("\nScanned %s, cached annotations for %d documents\n",
		color.CyanString("%d files", len(result.Files)), stats.SavedLen)

	if skipped := result.SizeLimitErrors(); len(skipped) > 0 {
		fmt.Println(color.YellowString("Warning: %d files exceeded the %d byte size limit:", len(skipped), maxFileSize))
		for _, e := range skipped {
			fmt.Printf("  %s\n", e.Path)
		}
	}
	for _, e := range result.Errors {
		if !models.IsSizeLimit(e) {
			fmt.Println(color.RedString("Error: %v", e))
		}
	}
}
