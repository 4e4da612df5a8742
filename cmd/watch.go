package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/colorize/analysis"
	"github.com/flanksource/colorize/colorizer"
	"github.com/flanksource/colorize/config"
	"github.com/flanksource/colorize/internal/schedule"
	"github.com/flanksource/colorize/models"
	"github.com/flanksource/colorize/renderer"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a workspace and re-colorize files as they change",
	Long: `Scan the workspace, then poll for modifications and feed edit/save events
into the colorization engine. Unchanged files are served from the
annotation cache; only modified files are re-extracted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "Polling interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	extractor := analysis.NewRegexExtractor(cfg.Languages, cfg.MaxFileSize)
	orch := colorizer.NewOrchestrator(cfg, extractor, renderer.NewTerminalRenderer(os.Stdout), schedule.NewClock())
	defer orch.Close()

	scanner := analysis.NewScanner()
	opts := analysis.ScanOptions{
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		MaxFileSize: cfg.MaxFileSize,
		BatchSize:   cfg.BatchSize,
	}

	modTimes := make(map[models.DocKey]time.Time)
	if err := pollOnce(cmd, orch, scanner, absWorkDir, opts, modTimes, true); err != nil {
		return err
	}
	logger.Infof("watching %s (poll interval %s)", absWorkDir, watchInterval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return nil
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
			if err := pollOnce(cmd, orch, scanner, absWorkDir, opts, modTimes, false); err != nil {
				logger.Warnf("poll failed: %v", err)
			}
		}
	}
}

// pollOnce rescans the workspace and emits open events for new files and
// save events for modified ones. Deleted files are closed.
func pollOnce(cmd *cobra.Command, orch *colorizer.Orchestrator, scanner *analysis.Scanner, root string, opts analysis.ScanOptions, modTimes map[models.DocKey]time.Time, initial bool) error {
	result, err := scanner.Scan(cmd.Context(), root, opts)
	if err != nil {
		return err
	}

	seen := make(map[models.DocKey]bool, len(result.Files))
	for _, file := range result.Files {
		seen[file.Path] = true
		info, err := os.Stat(string(file.Path))
		if err != nil {
			continue
		}
		prev, known := modTimes[file.Path]
		modTimes[file.Path] = info.ModTime()

		switch {
		case !known:
			orch.HandleEvent(colorizer.Event{Kind: colorizer.EventOpened, Doc: file.Path, Content: file.Content})
			if !initial {
				logger.Infof("opened %s", file.Path)
			}
		case info.ModTime().After(prev):
			orch.HandleEvent(colorizer.Event{Kind: colorizer.EventSaved, Doc: file.Path, Content: file.Content})
			logger.Infof("changed %s", file.Path)
		}
	}

	for doc := range modTimes {
		if !seen[doc] {
			delete(modTimes, doc)
			orch.HandleEvent(colorizer.Event{Kind: colorizer.EventClosed, Doc: doc})
			logger.Infof("closed %s", doc)
		}
	}
	return nil
}
