package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/torchtrack/torchtrack/internal/config"
	"github.com/torchtrack/torchtrack/internal/domain"
	"github.com/torchtrack/torchtrack/internal/gamelog"
	"github.com/torchtrack/torchtrack/internal/offset"
	"github.com/torchtrack/torchtrack/internal/refdata"
	"github.com/torchtrack/torchtrack/internal/tracker"
)

// Trackers bundles the event consumers fed by the watcher. Any nil tracker
// is skipped, so partial wiring (e.g. the one-shot parse command) works.
type Trackers struct {
	Inventory *tracker.Inventory
	Runs      *tracker.Segmenter
	PlayTime  *tracker.PlayTime
	Sessions  *tracker.Sessions
}

// Apply dispatches one event to every wired tracker. Dispatch is strictly
// sequential: inventory reconstruction requires in-file-order processing.
func (t *Trackers) Apply(ev domain.Event) {
	if t.Inventory != nil {
		t.Inventory.Apply(ev)
	}
	if t.Runs != nil {
		t.Runs.Apply(ev)
	}
	if t.PlayTime != nil {
		t.PlayTime.Apply(ev)
	}
	if t.Sessions != nil {
		t.Sessions.Apply(ev)
	}
}

// Watcher drives the read -> classify -> track pipeline over one game log
// file from a single polling loop, persisting the tail position after each
// cycle so a restart resumes where it left off.
type Watcher struct {
	cfg      *config.Config
	reader   *gamelog.Reader
	store    offset.Store
	trackers *Trackers
	items    *refdata.Items
	stats    *domain.ParseStats
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher. The offset store and item table may be nil;
// the watcher then runs without resume persistence or item names.
func NewWatcher(cfg *config.Config, store offset.Store, trackers *Trackers, items *refdata.Items) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if trackers == nil {
		trackers = &Trackers{}
	}
	return &Watcher{
		cfg:      cfg,
		reader:   gamelog.NewReader(cfg.GameLogPath),
		store:    store,
		trackers: trackers,
		items:    items,
		stats:    domain.NewParseStats(),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start restores the saved position and polls the log file until the
// context is cancelled or Stop is called. Per-cycle failures degrade to an
// empty cycle and are retried on the next tick; Start itself only returns
// on shutdown.
func (w *Watcher) Start(ctx context.Context) error {
	w.restorePosition(ctx)

	log.Info().
		Str("file", w.cfg.GameLogPath).
		Dur("poll_interval", w.cfg.PollInterval).
		Msg("Starting log watcher")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()
	statsTicker := time.NewTicker(w.cfg.StatsInterval)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			w.cycle(ctx)
		case <-statsTicker.C:
			w.logProgress()
		}
	}
}

// Stop stops the watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	return nil
}

func (w *Watcher) restorePosition(ctx context.Context) {
	if w.store == nil {
		return
	}
	pos, err := w.store.Get(ctx, w.cfg.GameLogPath)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load saved position, starting from beginning")
		return
	}
	if pos == (offset.TailPosition{}) {
		return
	}
	// A saved position larger than the live file means the client rotated
	// the log since last run; the reader detects that on its first read
	// and replays from the start.
	w.reader.SetPosition(pos.Offset, pos.Size)
	log.Info().
		Str("file", w.cfg.GameLogPath).
		Int64("offset", pos.Offset).
		Int64("size", pos.Size).
		Msg("Resumed from saved position")
}

// cycle reads one burst of new lines and folds the extracted events into
// the trackers. All failure states degrade to zero events this cycle.
func (w *Watcher) cycle(ctx context.Context) {
	lines, err := w.reader.ReadNewLines()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read new lines, will retry next poll")
		return
	}
	if len(lines) == 0 {
		return
	}

	for _, line := range lines {
		ev := gamelog.ParseLine(line)
		w.stats.Record(ev)
		if ev == nil {
			continue
		}
		w.trackers.Apply(ev)
	}
	if w.trackers.Inventory != nil {
		w.trackers.Inventory.EndBurst()
	}

	w.reportRuns()
	w.reportDeltas()
	w.savePosition(ctx)
}

func (w *Watcher) reportRuns() {
	if w.trackers.Runs == nil {
		return
	}
	for _, run := range w.trackers.Runs.DrainCompleted() {
		log.Info().
			Str("run_id", run.ID).
			Str("zone", run.ZoneName).
			Int("level_uid", run.LevelUID).
			Dur("duration", run.EndedAt.Sub(run.StartedAt)).
			Msg("Map run completed")
	}
}

func (w *Watcher) reportDeltas() {
	if w.trackers.Inventory == nil {
		return
	}
	for _, delta := range w.trackers.Inventory.DrainDeltas() {
		for _, change := range delta.Changes {
			ev := log.Debug().
				Str("proto", delta.ProtoName).
				Int("config_base_id", change.ConfigBaseID).
				Int("delta", change.Delta)
			if w.items != nil {
				ev = ev.Str("item", w.items.Name(change.ConfigBaseID))
			}
			ev.Msg("Item change")
		}
	}
}

func (w *Watcher) savePosition(ctx context.Context) {
	if w.store == nil {
		return
	}
	pos := offset.TailPosition{
		Offset: w.reader.Position(),
		Size:   w.reader.FileSize(),
	}
	if err := w.store.Set(ctx, w.cfg.GameLogPath, pos); err != nil {
		log.Warn().Err(err).Msg("Failed to save position")
	}
}

// Progress returns a snapshot of how far ingestion has advanced.
func (w *Watcher) Progress() domain.IngestProgress {
	return domain.IngestProgress{
		FilePath:      w.cfg.GameLogPath,
		FileSizeBytes: w.reader.FileSize(),
		OffsetBytes:   w.reader.Position(),
		LinesRead:     w.stats.LinesRead,
		EventsParsed:  w.stats.LinesRead - w.stats.LinesDropped,
	}
}

func (w *Watcher) logProgress() {
	progress := w.Progress()
	log.Info().
		Str("file", progress.FilePath).
		Int64("offset", progress.OffsetBytes).
		Int64("size", progress.FileSizeBytes).
		Uint64("lines_read", progress.LinesRead).
		Uint64("events", progress.EventsParsed).
		Msg("Ingest progress")
}

// RunOnce performs a single read-and-fold cycle. Used by tests and the
// one-shot CLI path.
func (w *Watcher) RunOnce(ctx context.Context) {
	w.cycle(ctx)
}

// Stats returns the watcher's classification counters.
func (w *Watcher) Stats() *domain.ParseStats {
	return w.stats
}
