package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/BreDEVs/kontrol-sub000/internal/wm"
)

// ErrLoopStopped is returned for work submitted after the loop exited.
var ErrLoopStopped = errors.New("event loop stopped")

// ErrLoopBusy is returned by Post when the queue is full.
var ErrLoopBusy = errors.New("event loop queue full")

// Work runs on the loop goroutine with exclusive access to the manager.
type Work = func(m *wm.Manager) error

type job struct {
	fn   Work
	done chan error
}

// Loop serializes every access to a wm.Manager onto one goroutine.
type Loop struct {
	mgr      *wm.Manager
	jobs     chan job
	stopped  chan struct{}
	interval time.Duration
	onTick   func(*wm.Manager)
	logger   *slog.Logger
}

// LoopConfig configures a Loop.
type LoopConfig struct {
	// TickInterval schedules OnTick; zero disables ticking.
	TickInterval time.Duration
	OnTick       func(*wm.Manager)
	QueueSize    int
	Logger       *slog.Logger
}

// NewLoop wraps mgr. The manager must not be touched outside the loop once
// Run has started.
func NewLoop(mgr *wm.Manager, cfg LoopConfig) *Loop {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loop{
		mgr:      mgr,
		jobs:     make(chan job, cfg.QueueSize),
		stopped:  make(chan struct{}),
		interval: cfg.TickInterval,
		onTick:   cfg.OnTick,
		logger:   cfg.Logger,
	}
}

// Run processes work until ctx is cancelled. Blocks.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)

	var tick <-chan time.Time
	if l.interval > 0 && l.onTick != nil {
		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-l.jobs:
			err := l.run(j.fn)
			if j.done != nil {
				j.done <- err
			}
		case <-tick:
			_ = l.run(func(m *wm.Manager) error {
				l.onTick(m)
				return nil
			})
		}
	}
}

// Do runs fn on the loop and waits for its result.
func (l *Loop) Do(ctx context.Context, fn Work) error {
	j := job{fn: fn, done: make(chan error, 1)}
	select {
	case l.jobs <- j:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.done:
		return err
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. Used from X event callbacks, which must
// never block.
func (l *Loop) Post(fn Work) error {
	select {
	case <-l.stopped:
		return ErrLoopStopped
	default:
	}
	select {
	case l.jobs <- job{fn: fn}:
		return nil
	default:
		return ErrLoopBusy
	}
}

func (l *Loop) run(fn Work) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop: panic recovered", "panic", r)
			err = fmt.Errorf("panic in event loop: %v", r)
		}
	}()
	return fn(l.mgr)
}
