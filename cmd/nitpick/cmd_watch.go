package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nitpick/internal/report"
	"nitpick/internal/watcher"
)

// watchCmd re-runs the check whenever the docs or the exception list change.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-check on documentation or exception-list changes",
	Long: `Runs an initial check, then watches the documentation roots and the
exception list. Edits re-trigger the check after a short debounce.
Interrupt with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	check := func(ctx context.Context) {
		result, err := runCheck(ctx, cfg)
		if err != nil {
			logger.Error("check failed", zap.Error(err))
			return
		}
		if err := report.New(os.Stdout, noColor).Render(result, verbose); err != nil {
			logger.Error("report failed", zap.Error(err))
		}
	}

	check(ctx)

	paths := make([]string, 0, len(cfg.Docs.Roots)+1)
	paths = append(paths, cfg.Docs.Roots...)
	paths = append(paths, filepath.Dir(cfg.Exceptions.Path))

	w, err := watcher.New(paths, check, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Println("watching for changes (Ctrl-C to stop)")
	<-ctx.Done()

	stats := w.Stats()
	logger.Info("watch finished",
		zap.Int("events", stats.EventsSeen),
		zap.Int("checks", stats.ChecksTriggered))
	return nil
}
