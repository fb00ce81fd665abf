package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/BreDEVs/kontrol-sub000/internal/config"
	"github.com/BreDEVs/kontrol-sub000/internal/hotkeys"
	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
	"github.com/BreDEVs/kontrol-sub000/internal/launcher"
	"github.com/BreDEVs/kontrol-sub000/internal/notify"
	"github.com/BreDEVs/kontrol-sub000/internal/platform"
	"github.com/BreDEVs/kontrol-sub000/internal/session"
	"github.com/BreDEVs/kontrol-sub000/internal/telemetry"
	"github.com/BreDEVs/kontrol-sub000/internal/tiling"
	"github.com/BreDEVs/kontrol-sub000/internal/wm"
	"github.com/BurntSushi/xgbutil"
	"github.com/google/uuid"
)

const (
	tickInterval    = time.Second
	shutdownTimeout = 5 * time.Second
	reloadTimeout   = 5 * time.Second
	telemetryBuffer = 4
)

// xDisplay is the part of a live X11 backend the daemon drives beyond the
// platform.Backend surface.
type xDisplay interface {
	XUtil() *xgbutil.XUtil
	EventLoop()
	StopEventLoop()
	WatchActiveWindow(fn func(platform.WindowID)) error
}

var _ ipc.Runtime = (*Daemon)(nil)

// Options configure a Daemon.
type Options struct {
	// ConfigPath is re-read on reload. Empty means the default location.
	ConfigPath string
	// SocketPath overrides the IPC socket. Empty means the runtime default.
	SocketPath string
	// PIDFile is written on start and removed on exit when set.
	PIDFile string
	Logger  *slog.Logger

	// Sessions and Notifier replace the stores built from the config.
	Sessions session.Store
	Notifier notify.Notifier
}

// Daemon composes the window manager with its display, IPC server and
// background workers.
type Daemon struct {
	cfgPath string
	pidFile string
	logger  *slog.Logger

	mu  sync.Mutex
	cfg *config.Config

	backend    platform.Backend
	x          xDisplay
	loop       *Loop
	launcher   *launcher.ExecLauncher
	notifier   notify.Notifier
	server     *ipc.Server
	reconciler *Reconciler
	sampler    *telemetry.Sampler
	hotkeys    *hotkeys.Handler
	closers    []io.Closer

	instanceID string

	telMu    sync.Mutex
	snapshot telemetry.Snapshot
	haveSnap bool
}

// OptionsFromConfig maps the configuration onto manager options for a
// screen of the given size.
func OptionsFromConfig(cfg *config.Config, screen tiling.Size) wm.Options {
	return wm.Options{
		MinSize:         tiling.Size{Width: cfg.MinWindowWidth, Height: cfg.MinWindowHeight},
		DefaultSize:     tiling.Size{Width: cfg.DefaultWindow.Width, Height: cfg.DefaultWindow.Height},
		SnapEnabled:     cfg.SnapEnabled,
		SnapThreshold:   cfg.SnapThreshold,
		TaskbarHeight:   cfg.TaskbarHeight,
		InitialDesktops: cfg.InitialDesktops,
		GapSize:         cfg.GapSize,
		Screen:          screen,
		Autosave:        cfg.Session.Autosave,
	}
}

// New builds a daemon on backend. Nothing runs until Run is called.
func New(ctx context.Context, cfg *config.Config, backend platform.Backend, opts Options) (*Daemon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = p
	}

	d := &Daemon{
		cfgPath:    cfgPath,
		pidFile:    opts.PIDFile,
		logger:     logger,
		cfg:        cfg,
		backend:    backend,
		instanceID: uuid.NewString(),
	}
	if x, ok := backend.(xDisplay); ok && x.XUtil() != nil {
		d.x = x
	}

	sessions := opts.Sessions
	if sessions == nil {
		store, closer, err := openSessionStore(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		sessions = store
		if closer != nil {
			d.closers = append(d.closers, closer)
		}
	}

	d.notifier = opts.Notifier
	if d.notifier == nil {
		d.notifier = openNotifier(cfg, logger)
	}

	d.launcher = launcher.New(cfg.Apps, backend, cfg.LaunchTimeoutDuration(), logger)

	screen := tiling.Size{Width: cfg.FallbackScreen.Width, Height: cfg.FallbackScreen.Height}
	if disp, err := backend.Screen(); err == nil {
		screen = tiling.Size{Width: disp.Bounds.Width, Height: disp.Bounds.Height}
	} else {
		logger.Warn("daemon: screen unavailable, using fallback", "error", err,
			"width", screen.Width, "height", screen.Height)
	}

	mgr := wm.NewManager(OptionsFromConfig(cfg, screen), wm.Deps{
		Surface:  platform.NewSurfaceAdapter(backend, cfg.Transparency),
		Sessions: sessions,
		Notifier: d.notifier,
		Launcher: d.launcher,
		Logger:   logger,
	})

	d.loop = NewLoop(mgr, LoopConfig{
		TickInterval: tickInterval,
		OnTick:       d.tick,
		Logger:       logger,
	})

	if interval := cfg.ReconcileIntervalDuration(); interval > 0 {
		d.reconciler = NewReconciler(ReconcilerConfig{
			Interval: interval,
			Logger:   logger,
		}, d.loop, WindowListerFromBackend(backend))
	}

	if cfg.Telemetry.Enabled {
		d.sampler = telemetry.NewSampler(cfg.TelemetryInterval(), telemetryBuffer, logger)
	}

	if opts.SocketPath != "" {
		d.server = ipc.NewServerAt(opts.SocketPath, d, logger)
	} else {
		server, err := ipc.NewServer(d, logger)
		if err != nil {
			d.close()
			return nil, err
		}
		d.server = server
	}

	return d, nil
}

func openSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, io.Closer, error) {
	switch cfg.Session.Backend {
	case "postgres":
		store, err := session.OpenPostgres(ctx, cfg.Session.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		path, err := cfg.SessionPath()
		if err != nil {
			return nil, nil, err
		}
		return session.NewFileStore(path, logger), nil, nil
	}
}

func openNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	if !cfg.Notifications.Enabled {
		return notify.Nop{}
	}
	n, err := notify.NewDBusNotifier(cfg.Notifications.TimeoutMS)
	if err != nil {
		logger.Warn("daemon: notifications disabled", "error", err)
		return notify.Nop{}
	}
	return n
}

// Run starts every component and blocks until ctx is cancelled. The session
// is flushed before the loop stops.
func (d *Daemon) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		d.loop.Run(loopCtx)
		close(loopDone)
	}()
	defer func() {
		stopLoop()
		<-loopDone
		d.close()
	}()

	if err := d.startup(ctx); err != nil {
		return err
	}

	if d.pidFile != "" {
		if err := os.WriteFile(d.pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600); err != nil {
			d.logger.Warn("daemon: failed to write pid file", "path", d.pidFile, "error", err)
		} else {
			defer os.Remove(d.pidFile)
		}
	}

	if err := d.server.Start(); err != nil {
		return err
	}
	defer d.server.Stop()

	bg, cancelBG := context.WithCancel(ctx)
	defer cancelBG()

	if d.reconciler != nil {
		d.reconciler.ReconcileNow(bg)
		go d.reconciler.Run(bg)
	}
	if d.sampler != nil {
		go d.sampler.Run(bg)
	}
	if d.x != nil {
		d.startX()
		defer d.x.StopEventLoop()
	}

	d.logger.Info("daemon: running", "instance", d.instanceID, "config", d.cfgPath)
	<-ctx.Done()

	d.logger.Info("daemon: shutting down")
	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.loop.Do(flushCtx, func(m *wm.Manager) error {
		return m.FlushSession(flushCtx)
	}); err != nil {
		d.logger.Warn("daemon: final session flush failed", "error", err)
	}
	return nil
}

func (d *Daemon) startup(ctx context.Context) error {
	restore := d.config().Session.RestoreOnStart
	return d.loop.Do(ctx, func(m *wm.Manager) error {
		d.refreshScreen(m)
		if restore {
			m.RestoreSession(ctx)
		}
		return nil
	})
}

func (d *Daemon) startX() {
	d.hotkeys = hotkeys.NewHandler(d.x.XUtil(), d.loop.Post, d.logger)
	d.hotkeys.RegisterAll(hotkeys.Bindings(d.config().Hotkeys))

	if err := d.x.WatchActiveWindow(d.externalFocus); err != nil {
		d.logger.Warn("daemon: cannot follow external focus changes", "error", err)
	}

	go d.x.EventLoop()
}

// externalFocus mirrors a focus change made on the display, such as a click,
// into the manager.
func (d *Daemon) externalFocus(id platform.WindowID) {
	err := d.loop.Post(func(m *wm.Manager) error {
		wid, ok := m.WindowByContent(wm.ContentHandle(id))
		if !ok {
			return nil
		}
		if rec, ok := m.Focused(); ok && rec.ID == wid {
			return nil
		}
		return m.Focus(wid)
	})
	if err != nil {
		d.logger.Debug("daemon: external focus dropped", "window", id, "error", err)
	}
}

func (d *Daemon) tick(m *wm.Manager) {
	d.refreshScreen(m)

	if d.sampler != nil {
		if snap, ok := telemetry.Drain(d.sampler.C()); ok {
			d.telMu.Lock()
			d.snapshot = snap
			d.haveSnap = true
			d.telMu.Unlock()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = m.FlushSession(ctx)
}

func (d *Daemon) refreshScreen(m *wm.Manager) {
	disp, err := d.backend.Screen()
	if err != nil {
		return
	}
	m.SetScreen(disp.Bounds.Width, disp.Bounds.Height)
}

func (d *Daemon) config() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

func (d *Daemon) close() {
	if d.x != nil && d.hotkeys != nil {
		d.hotkeys.UnregisterAll()
	}
	if c, ok := d.notifier.(io.Closer); ok {
		d.closers = append(d.closers, c)
	}
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			d.logger.Debug("daemon: close failed", "error", err)
		}
	}
	d.closers = nil
}

// Do runs fn on the event loop.
func (d *Daemon) Do(ctx context.Context, fn func(*wm.Manager) error) error {
	return d.loop.Do(ctx, fn)
}

// Launch waits for the application outside the loop, then adopts its
// window on the loop.
func (d *Daemon) Launch(ctx context.Context, app string, args []string) (wm.WindowID, error) {
	h, title, err := d.launcher.Launch(ctx, app, args)
	if err != nil {
		if nerr := d.notifier.Notify("Berke0S", fmt.Sprintf("%s could not be started", app)); nerr != nil {
			d.logger.Debug("daemon: notification failed", "error", nerr)
		}
		return 0, fmt.Errorf("launch %q: %w", app, err)
	}

	var id wm.WindowID
	err = d.loop.Do(ctx, func(m *wm.Manager) error {
		if existing, ok := m.WindowByContent(h); ok {
			id = existing
			return m.Focus(existing)
		}
		id = m.AdoptWindow(title, h)
		return nil
	})
	return id, err
}

// Reload re-reads the configuration file and applies it to the running
// daemon. A config that fails to load leaves the current one in place.
func (d *Daemon) Reload() error {
	res, err := config.LoadFromPath(d.cfgPath)
	if err != nil {
		return err
	}
	cfg := res.Config

	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	d.launcher.Update(cfg.Apps, cfg.LaunchTimeoutDuration())
	if d.hotkeys != nil {
		d.hotkeys.UnregisterAll()
		d.hotkeys.RegisterAll(hotkeys.Bindings(cfg.Hotkeys))
	}

	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()
	err = d.loop.Do(ctx, func(m *wm.Manager) error {
		screen := m.Screen()
		m.Reconfigure(OptionsFromConfig(cfg, tiling.Size{Width: screen.Width, Height: screen.Height}))
		return nil
	})
	if err != nil {
		return fmt.Errorf("apply config: %w", err)
	}
	d.logger.Info("daemon: config reloaded", "path", d.cfgPath)
	return nil
}

// Telemetry returns the most recent resource sample.
func (d *Daemon) Telemetry() (telemetry.Snapshot, bool) {
	d.telMu.Lock()
	defer d.telMu.Unlock()
	return d.snapshot, d.haveSnap
}

// InstanceID identifies this daemon run.
func (d *Daemon) InstanceID() string {
	return d.instanceID
}

// IsRunning reports whether a daemon answers on the IPC socket.
func IsRunning(client *ipc.Client) bool {
	return client.Ping() == nil
}

// ErrAlreadyRunning is returned when another daemon owns the socket.
var ErrAlreadyRunning = errors.New("daemon already running")
