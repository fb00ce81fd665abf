package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/BreDEVs/kontrol-sub000/internal/platform"
	"github.com/BreDEVs/kontrol-sub000/internal/wm"
)

// WindowLister returns the ids of client windows that currently exist.
type WindowLister func() ([]platform.WindowID, error)

// WindowListerFromBackend lists windows through a platform backend.
func WindowListerFromBackend(b platform.Backend) WindowLister {
	return func() ([]platform.WindowID, error) {
		windows, err := b.Windows()
		if err != nil {
			return nil, err
		}
		ids := make([]platform.WindowID, len(windows))
		for i, w := range windows {
			ids[i] = w.ID
		}
		return ids, nil
	}
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler drops managed windows whose X11 surface disappeared without a
// close going through the shell.
type Reconciler struct {
	interval    time.Duration
	loop        *Loop
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a reconciler that works through loop.
func NewReconciler(cfg ReconcilerConfig, loop *Loop, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reconciler{
		interval:    interval,
		loop:        loop,
		listWindows: listWindows,
		logger:      logger,
	}
}

// Run reconciles every interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.ReconcileNow(ctx)
		}
	}
}

// ReconcileNow runs one pass and returns how many windows were dropped.
func (r *Reconciler) ReconcileNow(ctx context.Context) int {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	dropped := 0
	// The listing happens on the loop so a window adopted concurrently is
	// never judged against a stale list.
	err := r.loop.Do(ctx, func(m *wm.Manager) error {
		actual, err := r.listWindows()
		if err != nil {
			return fmt.Errorf("list windows: %w", err)
		}
		alive := make(map[wm.ContentHandle]bool, len(actual))
		for _, id := range actual {
			alive[wm.ContentHandle(id)] = true
		}

		for _, rec := range m.Windows() {
			if rec.Content == wm.PlaceholderContent || alive[rec.Content] {
				continue
			}
			r.logger.Info("reconciler: surface vanished",
				"window", rec.ID,
				"content", uint64(rec.Content),
				"title", rec.Title)
			if err := m.Forget(rec.ID); err == nil {
				dropped++
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("reconciler: pass aborted", "error", err)
	}
	return dropped
}
