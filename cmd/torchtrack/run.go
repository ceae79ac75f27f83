package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/torchtrack/torchtrack/internal/config"
	"github.com/torchtrack/torchtrack/internal/observability"
	"github.com/torchtrack/torchtrack/internal/offset"
	"github.com/torchtrack/torchtrack/internal/refdata"
	"github.com/torchtrack/torchtrack/internal/service"
	"github.com/torchtrack/torchtrack/internal/tracker"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the game log and track session state",
	Long: `Watch the configured game log file, classify appended lines into
events and fold them into inventory, run, play-time and session state.

Configuration comes from environment variables; GAME_LOG_PATH is required.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogFile)

	log.Info().
		Str("version", version).
		Str("file", cfg.GameLogPath).
		Msg("Starting torchtrack")

	store, err := offset.NewBoltDBStore(cfg.OffsetDBPath)
	if err != nil {
		return fmt.Errorf("failed to open position store: %w", err)
	}
	defer store.Close()

	items := refdata.NewItems(cfg.ItemsFile)
	if err := items.Load(); err != nil {
		// Missing reference data degrades to numeric item ids only.
		log.Warn().Err(err).Msg("Failed to load item reference data, continuing without it")
	}

	trackers := &service.Trackers{
		Inventory: tracker.NewInventory(),
		Runs:      tracker.NewSegmenter(cfg.HubZoneTokens),
		PlayTime:  tracker.NewPlayTime(cfg.PauseViews),
		Sessions:  tracker.NewSessions(),
	}

	watcher, err := service.NewWatcher(cfg, store, trackers, items)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Info().Msg("Received shutdown signal")
	case err := <-errChan:
		log.Error().Err(err).Msg("Watcher error")
	}

	log.Info().Msg("Shutting down gracefully...")
	cancel()
	if err := watcher.Stop(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}

	log.Info().Msg("Stopped")
	return nil
}
