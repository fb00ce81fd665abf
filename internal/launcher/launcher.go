package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/BreDEVs/kontrol-sub000/internal/platform"
	"github.com/BreDEVs/kontrol-sub000/internal/wm"
)

var (
	// ErrUnknownApp is returned for an app id missing from the apps table.
	ErrUnknownApp = errors.New("unknown application")
	// ErrNoWindow is returned when the process never maps a window.
	ErrNoWindow = errors.New("application did not open a window")
)

const defaultPollInterval = 100 * time.Millisecond

// ExecLauncher starts configured commands and waits for their first
// top-level window.
type ExecLauncher struct {
	mu           sync.RWMutex
	apps         map[string]string
	backend      platform.Backend
	timeout      time.Duration
	pollInterval time.Duration
	logger       *slog.Logger

	spawn func(name string, args []string) (int, error)
}

var _ wm.Launcher = (*ExecLauncher)(nil)

// New returns a launcher for apps (id -> command line). timeout bounds the
// wait for a window.
func New(apps map[string]string, backend platform.Backend, timeout time.Duration, logger *slog.Logger) *ExecLauncher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	l := &ExecLauncher{
		apps:         copyApps(apps),
		backend:      backend,
		timeout:      timeout,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
	l.spawn = l.startProcess
	return l
}

// Apps returns the configured app ids.
func (l *ExecLauncher) Apps() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyApps(l.apps)
}

// Update replaces the apps table and timeout after a config reload.
// Launches already waiting keep their original command.
func (l *ExecLauncher) Update(apps map[string]string, timeout time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.apps = copyApps(apps)
	l.timeout = timeout
}

func copyApps(apps map[string]string) map[string]string {
	out := make(map[string]string, len(apps))
	for k, v := range apps {
		out[k] = v
	}
	return out
}

// Launch starts appID with extra args and returns its window as a content
// handle along with the window title.
func (l *ExecLauncher) Launch(ctx context.Context, appID string, args []string) (wm.ContentHandle, string, error) {
	l.mu.RLock()
	cmdline, ok := l.apps[appID]
	timeout := l.timeout
	l.mu.RUnlock()
	if !ok {
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownApp, appID)
	}
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("%w: %q has an empty command", ErrUnknownApp, appID)
	}

	known := make(map[platform.WindowID]bool)
	if existing, err := l.backend.Windows(); err == nil {
		for _, w := range existing {
			known[w.ID] = true
		}
	}

	pid, err := l.spawn(fields[0], append(fields[1:], args...))
	if err != nil {
		return 0, "", fmt.Errorf("start %s: %w", fields[0], err)
	}
	l.logger.Info("launcher: started", "app", appID, "pid", pid)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()
	for {
		if w, ok := l.findWindow(pid, known); ok {
			title := w.Title
			if title == "" {
				title = appID
			}
			return wm.ContentHandle(w.ID), title, nil
		}
		select {
		case <-ctx.Done():
			return 0, "", fmt.Errorf("%s (pid %d): %w", appID, pid, ErrNoWindow)
		case <-ticker.C:
		}
	}
}

// findWindow prefers a window owned by pid. Clients that do not set
// _NET_WM_PID are matched as the first new window without a pid.
func (l *ExecLauncher) findWindow(pid int, known map[platform.WindowID]bool) (platform.Window, bool) {
	windows, err := l.backend.Windows()
	if err != nil {
		return platform.Window{}, false
	}
	var anonymous *platform.Window
	for i, w := range windows {
		if known[w.ID] {
			continue
		}
		if w.PID == pid {
			return w, true
		}
		if w.PID == 0 && anonymous == nil {
			anonymous = &windows[i]
		}
	}
	if anonymous != nil {
		return *anonymous, true
	}
	return platform.Window{}, false
}

func (l *ExecLauncher) startProcess(name string, args []string) (int, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug("launcher: process exited", "pid", cmd.Process.Pid, "error", err)
		}
	}()
	return cmd.Process.Pid, nil
}
