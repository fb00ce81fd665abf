package daemon

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BreDEVs/kontrol-sub000/internal/wm"
)

func newTestManager() *wm.Manager {
	opts := wm.DefaultOptions()
	opts.Autosave = false
	return wm.NewManager(opts, wm.Deps{})
}

func startLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestLoop_DoReturnsWorkResult(t *testing.T) {
	l := NewLoop(newTestManager(), LoopConfig{})
	startLoop(t, l)

	var id wm.WindowID
	err := l.Do(context.Background(), func(m *wm.Manager) error {
		id = m.CreateWindow("a", 0, 0, 0, 300, 300)
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected a window id")
	}

	sentinel := errors.New("boom")
	if err := l.Do(context.Background(), func(*wm.Manager) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected work error, got %v", err)
	}
}

func TestLoop_PostRunsInOrder(t *testing.T) {
	l := NewLoop(newTestManager(), LoopConfig{})
	startLoop(t, l)

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		if err := l.Post(func(*wm.Manager) error {
			order = append(order, i)
			return nil
		}); err != nil {
			t.Fatalf("Post: %v", err)
		}
	}
	// Do is queued behind the posts.
	_ = l.Do(context.Background(), func(*wm.Manager) error { return nil })

	if len(order) != 3 || order[0] != 1 || order[2] != 3 {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestLoop_PostFailsWhenQueueFull(t *testing.T) {
	l := NewLoop(newTestManager(), LoopConfig{QueueSize: 1})

	if err := l.Post(func(*wm.Manager) error { return nil }); err != nil {
		t.Fatalf("first Post: %v", err)
	}
	if err := l.Post(func(*wm.Manager) error { return nil }); !errors.Is(err, ErrLoopBusy) {
		t.Fatalf("expected ErrLoopBusy, got %v", err)
	}
}

func TestLoop_RecoversFromPanic(t *testing.T) {
	l := NewLoop(newTestManager(), LoopConfig{})
	startLoop(t, l)

	err := l.Do(context.Background(), func(*wm.Manager) error {
		panic("bad work")
	})
	if err == nil {
		t.Fatalf("expected panic to surface as an error")
	}

	if err := l.Do(context.Background(), func(*wm.Manager) error { return nil }); err != nil {
		t.Fatalf("loop should keep running after a panic: %v", err)
	}
}

func TestLoop_DoAfterStop(t *testing.T) {
	l := NewLoop(newTestManager(), LoopConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	if err := l.Do(context.Background(), func(*wm.Manager) error { return nil }); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("expected ErrLoopStopped, got %v", err)
	}
	if err := l.Post(func(*wm.Manager) error { return nil }); !errors.Is(err, ErrLoopStopped) {
		t.Fatalf("expected ErrLoopStopped from Post, got %v", err)
	}
}

func TestLoop_TickRunsOnLoop(t *testing.T) {
	var ticks atomic.Int32
	l := NewLoop(newTestManager(), LoopConfig{
		TickInterval: 5 * time.Millisecond,
		OnTick:       func(*wm.Manager) { ticks.Add(1) },
	})
	startLoop(t, l)

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("tick did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
