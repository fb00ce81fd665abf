package wm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/BreDEVs/kontrol-sub000/internal/session"
	"github.com/BreDEVs/kontrol-sub000/internal/tiling"
)

const (
	saveTimeout = 5 * time.Second

	// RestoredTitle is used for restored windows saved without a title.
	RestoredTitle = "Restored Window"

	// MaxRestoredDesktops bounds how many desktops a session restore may
	// create. Entries beyond it land on the last restorable desktop.
	MaxRestoredDesktops = 64
)

// Options holds the layout and desktop settings the manager runs with.
type Options struct {
	MinSize         tiling.Size
	DefaultSize     tiling.Size
	SnapEnabled     bool
	SnapThreshold   int
	TaskbarHeight   int
	InitialDesktops int
	GapSize         int
	Screen          tiling.Size
	Autosave        bool
}

// DefaultOptions returns the stock shell settings.
func DefaultOptions() Options {
	return Options{
		MinSize:         tiling.Size{Width: 200, Height: 150},
		DefaultSize:     tiling.Size{Width: 400, Height: 300},
		SnapEnabled:     true,
		SnapThreshold:   10,
		TaskbarHeight:   40,
		InitialDesktops: 1,
		GapSize:         8,
		Screen:          tiling.Size{Width: 1024, Height: 768},
		Autosave:        true,
	}
}

// Deps are the collaborators the manager calls out to. Nil fields fall back
// to no-op implementations and an in-memory session.
type Deps struct {
	Surface  Surface
	Sessions SessionStore
	Notifier Notifier
	Launcher Launcher
	Logger   *slog.Logger
}

// Direction selects the neighbouring desktop.
type Direction int

const (
	Next Direction = iota
	Previous
)

// Manager is the single owner of window manager state. It is not safe for
// concurrent use; the daemon serializes every call through its event loop.
type Manager struct {
	opts     Options
	screen   tiling.Screen
	store    *Store
	desktops *Desktops
	focus    *Focus

	surface  Surface
	sessions SessionStore
	notifier Notifier
	launcher Launcher
	logger   *slog.Logger

	gestures map[WindowID]*gesture
	dirty    bool
}

// NewManager builds a manager with InitialDesktops empty desktops.
func NewManager(opts Options, deps Deps) *Manager {
	if opts.DefaultSize.Width <= 0 || opts.DefaultSize.Height <= 0 {
		opts.DefaultSize = DefaultOptions().DefaultSize
	}
	if opts.Screen.Width <= 0 || opts.Screen.Height <= 0 {
		opts.Screen = DefaultOptions().Screen
	}

	store := NewStore(opts.MinSize)
	desktops := NewDesktops(opts.InitialDesktops)
	m := &Manager{
		opts: opts,
		screen: tiling.Screen{
			Width:         opts.Screen.Width,
			Height:        opts.Screen.Height,
			TaskbarHeight: opts.TaskbarHeight,
		},
		store:    store,
		desktops: desktops,
		focus:    NewFocus(store, desktops),
		surface:  deps.Surface,
		sessions: deps.Sessions,
		notifier: deps.Notifier,
		launcher: deps.Launcher,
		logger:   deps.Logger,
		gestures: make(map[WindowID]*gesture),
	}
	if m.surface == nil {
		m.surface = nopSurface{}
	}
	if m.sessions == nil {
		m.sessions = &memorySessions{}
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m
}

// Options returns the settings the manager was built with.
func (m *Manager) Options() Options {
	return m.opts
}

// Screen returns the current screen description.
func (m *Manager) Screen() tiling.Screen {
	return m.screen
}

// SetScreen updates the screen size reported by the display.
func (m *Manager) SetScreen(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.screen.Width = width
	m.screen.Height = height
}

// Reconfigure applies new layout settings. Desktops and windows are kept.
func (m *Manager) Reconfigure(opts Options) {
	m.opts.SnapEnabled = opts.SnapEnabled
	m.opts.SnapThreshold = opts.SnapThreshold
	m.opts.GapSize = opts.GapSize
	m.opts.Autosave = opts.Autosave
	if opts.DefaultSize.Width > 0 && opts.DefaultSize.Height > 0 {
		m.opts.DefaultSize = opts.DefaultSize
	}
	m.opts.TaskbarHeight = opts.TaskbarHeight
	m.screen.TaskbarHeight = opts.TaskbarHeight

	if opts.MinSize.Width > 0 && opts.MinSize.Height > 0 && opts.MinSize != m.opts.MinSize {
		m.store.SetMinSize(opts.MinSize)
		m.opts.MinSize = m.store.MinSize()
		for _, rec := range m.store.All() {
			if tiling.Clamp(rec.Geometry, m.opts.MinSize) != rec.Geometry {
				_ = m.store.mutate(rec.ID, func(*WindowRecord) {})
				m.afterGeometry(rec.ID)
			}
		}
	}
}

// CreateWindow opens a window on the active desktop, on top of the stack.
// Width and height below the minimum are clamped.
func (m *Manager) CreateWindow(title string, content ContentHandle, x, y, width, height int) WindowID {
	geometry := tiling.Rect{X: x, Y: y, Width: width, Height: height}
	id := m.createOn(title, content, geometry, m.desktops.Active())
	m.logger.Debug("wm: window created", "window", id, "title", title, "desktop", m.desktops.Active())
	m.autosave()
	return id
}

// CreateDefaultWindow opens a default-sized window centered on screen.
func (m *Manager) CreateDefaultWindow(title string, content ContentHandle) WindowID {
	r := tiling.Centered(m.screen, m.opts.DefaultSize.Width, m.opts.DefaultSize.Height)
	return m.CreateWindow(title, content, r.X, r.Y, r.Width, r.Height)
}

func (m *Manager) createOn(title string, content ContentHandle, geometry tiling.Rect, desktop int) WindowID {
	id := m.store.Create(title, geometry, desktop)
	// desktop is always a valid index here, so Insert cannot fail.
	_ = m.desktops.Insert(id, desktop)
	_ = m.store.mutate(id, func(r *WindowRecord) { r.Content = content })
	m.focus.Reset()

	rec, _ := m.store.Get(id)
	m.place(rec)
	if desktop == m.desktops.Active() {
		m.show(rec)
		m.raise(rec)
	} else {
		m.hide(rec)
	}
	return id
}

// CloseWindow removes a window. Closing an unknown window is logged and
// reported with ErrNotFound but changes nothing.
func (m *Manager) CloseWindow(id WindowID) error {
	rec, err := m.store.Get(id)
	if err != nil {
		m.logger.Warn("wm: close of unknown window ignored", "window", id)
		return fmt.Errorf("close window: %w", err)
	}

	delete(m.gestures, id)
	_ = m.desktops.Remove(id)
	_ = m.store.Remove(id)
	m.focus.Reset()

	if rec.Content != PlaceholderContent {
		if err := m.surface.Close(rec.Content); err != nil {
			m.logger.Warn("wm: failed to close surface", "window", id, "error", err)
		}
	}

	if next, ok := m.focus.Focused(rec.Desktop); ok && rec.Desktop == m.desktops.Active() {
		if nrec, err := m.store.Get(next); err == nil {
			m.raise(nrec)
		}
	}

	m.logger.Debug("wm: window closed", "window", id)
	m.autosave()
	return nil
}

// Forget drops a window whose surface is already gone, without asking the
// display to close it.
func (m *Manager) Forget(id WindowID) error {
	if _, err := m.store.Get(id); err != nil {
		return fmt.Errorf("forget window: %w", err)
	}
	_ = m.store.mutate(id, func(r *WindowRecord) { r.Content = PlaceholderContent })
	return m.CloseWindow(id)
}

// Drag moves a window to (x, y) as a completed drag, applying edge snapping
// when enabled. A maximized window becomes normal again.
func (m *Manager) Drag(id WindowID, x, y int) error {
	return m.move(id, x, y, m.opts.SnapEnabled)
}

func (m *Manager) move(id WindowID, x, y int, snap bool) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return fmt.Errorf("drag: %w", err)
	}

	target := rec.Geometry
	if rec.State == StateMaximized && rec.Restore != nil {
		target.Width = rec.Restore.Width
		target.Height = rec.Restore.Height
	}
	target.X = x
	target.Y = y

	if snap {
		var edge tiling.Edge
		target, edge = tiling.Snap(target, m.screen, m.opts.SnapThreshold)
		if edge != tiling.EdgeNone {
			m.logger.Debug("wm: window snapped", "window", id, "edge", edge.String())
		}
	}

	err = m.store.mutate(id, func(r *WindowRecord) {
		r.Geometry = target
		clearMaximized(r)
	})
	if err != nil {
		return err
	}
	m.afterGeometry(id)
	return nil
}

// clearMaximized drops maximize bookkeeping after an explicit geometry
// change. A minimized window stays minimized but will come back normal.
func clearMaximized(r *WindowRecord) {
	if r.State == StateMaximized {
		r.State = StateNormal
	}
	r.Restore = nil
	r.wasMaximized = false
}

// Resize sets a window's size, clamped to the minimum.
func (m *Manager) Resize(id WindowID, width, height int) error {
	err := m.store.mutate(id, func(r *WindowRecord) {
		r.Geometry.Width = width
		r.Geometry.Height = height
		clearMaximized(r)
	})
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	m.afterGeometry(id)
	return nil
}

// MaximizeToggle maximizes a window, or restores it if already maximized.
func (m *Manager) MaximizeToggle(id WindowID) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return fmt.Errorf("maximize: %w", err)
	}
	if rec.State == StateMaximized {
		return m.Restore(id)
	}
	return m.Maximize(id)
}

// Maximize fills the usable screen area. Maximizing twice keeps the first
// stored restore geometry.
func (m *Manager) Maximize(id WindowID) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return fmt.Errorf("maximize: %w", err)
	}
	if rec.State == StateMaximized {
		return nil
	}
	if rec.State == StateMinimized {
		if err := m.Focus(id); err != nil {
			return err
		}
		rec, _ = m.store.Get(id)
		if rec.State == StateMaximized {
			return nil
		}
	}

	err = m.store.mutate(id, func(r *WindowRecord) {
		restore := r.Geometry
		r.Restore = &restore
		r.Geometry = tiling.Maximized(m.screen)
		r.State = StateMaximized
	})
	if err != nil {
		return err
	}
	m.afterGeometry(id)
	return nil
}

// Restore returns a maximized window to its stored geometry.
func (m *Manager) Restore(id WindowID) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if rec.State != StateMaximized {
		return nil
	}

	err = m.store.mutate(id, func(r *WindowRecord) {
		if r.Restore != nil {
			r.Geometry = *r.Restore
		}
		r.Restore = nil
		r.State = StateNormal
	})
	if err != nil {
		return err
	}
	m.afterGeometry(id)
	return nil
}

// Minimize hides a window; focus passes to the next window on its desktop.
func (m *Manager) Minimize(id WindowID) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return fmt.Errorf("minimize: %w", err)
	}
	if rec.State == StateMinimized {
		return nil
	}

	_ = m.store.mutate(id, func(r *WindowRecord) {
		r.wasMaximized = r.State == StateMaximized
		r.State = StateMinimized
	})
	m.focus.Reset()
	m.hide(rec)

	if rec.Desktop == m.desktops.Active() {
		if next, ok := m.focus.Focused(rec.Desktop); ok {
			if nrec, err := m.store.Get(next); err == nil {
				m.raise(nrec)
			}
		}
	}
	return nil
}

// Focus raises a window, switching to its desktop first and un-minimizing it
// when needed.
func (m *Manager) Focus(id WindowID) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return fmt.Errorf("focus: %w", err)
	}

	if rec.Desktop != m.desktops.Active() {
		if err := m.SwitchTo(rec.Desktop); err != nil {
			return fmt.Errorf("focus: %w", err)
		}
	}

	if rec.State == StateMinimized {
		_ = m.store.mutate(id, func(r *WindowRecord) {
			if r.wasMaximized {
				r.State = StateMaximized
			} else {
				r.State = StateNormal
			}
			r.wasMaximized = false
		})
		m.show(rec)
	}

	if err := m.focus.Raise(id); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	m.focus.Reset()
	rec, _ = m.store.Get(id)
	m.raise(rec)
	return nil
}

// CycleFocus focuses the next window on the active desktop. ok is false when
// there is nothing to cycle to.
func (m *Manager) CycleFocus() (WindowID, bool) {
	id, ok := m.focus.Cycle()
	if !ok {
		return 0, false
	}
	if rec, err := m.store.Get(id); err == nil {
		m.raise(rec)
	}
	return id, true
}

// Focused returns the focused window of the active desktop.
func (m *Manager) Focused() (WindowRecord, bool) {
	id, ok := m.focus.Focused(m.desktops.Active())
	if !ok {
		return WindowRecord{}, false
	}
	rec, err := m.store.Get(id)
	if err != nil {
		return WindowRecord{}, false
	}
	return rec, true
}

// SwitchDesktop moves to the neighbouring desktop without wrapping and
// returns the active index.
func (m *Manager) SwitchDesktop(dir Direction) int {
	prev := m.desktops.Active()
	var changed bool
	switch dir {
	case Previous:
		_, changed = m.desktops.Previous()
	default:
		_, changed = m.desktops.Next()
	}
	if changed {
		m.applyDesktopVisibility(prev)
	}
	return m.desktops.Active()
}

// SwitchTo activates a desktop by index.
func (m *Manager) SwitchTo(index int) error {
	prev := m.desktops.Active()
	if err := m.desktops.SwitchTo(index); err != nil {
		m.logger.Warn("wm: desktop switch rejected", "desktop", index, "error", err)
		return err
	}
	if prev != index {
		m.applyDesktopVisibility(prev)
	}
	return nil
}

// AddDesktop appends an empty desktop and returns its index.
func (m *Manager) AddDesktop() int {
	idx := m.desktops.Add()
	m.logger.Debug("wm: desktop added", "desktop", idx)
	return idx
}

// ActiveDesktop returns the active desktop index.
func (m *Manager) ActiveDesktop() int {
	return m.desktops.Active()
}

// DesktopCount returns the number of desktops.
func (m *Manager) DesktopCount() int {
	return m.desktops.Count()
}

// MoveToDesktop reassigns a window to another desktop.
func (m *Manager) MoveToDesktop(id WindowID, index int) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return fmt.Errorf("move to desktop: %w", err)
	}
	if err := m.desktops.Assign(id, index); err != nil {
		return fmt.Errorf("move to desktop: %w", err)
	}
	_ = m.store.mutate(id, func(r *WindowRecord) { r.Desktop = index })
	m.focus.Reset()

	if index == m.desktops.Active() {
		if rec.State != StateMinimized {
			m.show(rec)
		}
		if err := m.focus.Raise(id); err == nil {
			if raised, err := m.store.Get(id); err == nil && raised.State != StateMinimized {
				m.raise(raised)
			}
		}
	} else {
		m.hide(rec)
		if next, ok := m.focus.Focused(rec.Desktop); ok && rec.Desktop == m.desktops.Active() {
			if nrec, err := m.store.Get(next); err == nil {
				m.raise(nrec)
			}
		}
	}

	m.autosave()
	return nil
}

// Tile arranges the visible windows of the active desktop in a grid and
// returns how many were placed.
func (m *Manager) Tile() int {
	stack := m.focus.Stacking(m.desktops.Active())
	if len(stack) == 0 {
		return 0
	}
	// Tile in creation order so positions stay stable across calls.
	ids := make([]WindowID, len(stack))
	for i, rec := range stack {
		ids[i] = rec.ID
	}
	slices.Sort(ids)

	positions := tiling.CalculatePositions(len(ids), m.screen.Usable(), m.opts.GapSize)
	for i, id := range ids {
		pos := positions[i]
		_ = m.store.mutate(id, func(r *WindowRecord) {
			r.Geometry = pos
			clearMaximized(r)
		})
		m.afterGeometry(id)
	}
	return len(ids)
}

// Window returns a copy of one window record.
func (m *Manager) Window(id WindowID) (WindowRecord, error) {
	return m.store.Get(id)
}

// Windows returns every window ordered by id.
func (m *Manager) Windows() []WindowRecord {
	return m.store.All()
}

// DesktopWindows returns a desktop's visible windows from bottom to top.
func (m *Manager) DesktopWindows(index int) ([]WindowRecord, error) {
	if _, err := m.desktops.Windows(index); err != nil {
		return nil, err
	}
	return m.focus.Stacking(index), nil
}

// Desktops returns the desktop descriptors.
func (m *Manager) Desktops() []Desktop {
	return m.desktops.List()
}

// WindowByContent finds the window embedding a surface.
func (m *Manager) WindowByContent(h ContentHandle) (WindowID, bool) {
	if h == PlaceholderContent {
		return 0, false
	}
	for _, rec := range m.store.All() {
		if rec.Content == h {
			return rec.ID, true
		}
	}
	return 0, false
}

// LaunchApp starts an application through the launcher and wraps its
// surface in a new window.
func (m *Manager) LaunchApp(ctx context.Context, appID string, args []string) (WindowID, error) {
	if m.launcher == nil {
		return 0, fmt.Errorf("launch %q: no launcher configured", appID)
	}
	h, title, err := m.launcher.Launch(ctx, appID, args)
	if err != nil {
		return 0, fmt.Errorf("launch %q: %w", appID, err)
	}
	return m.AdoptWindow(title, h), nil
}

// AdoptWindow creates a default-sized window around an already running
// surface.
func (m *Manager) AdoptWindow(title string, h ContentHandle) WindowID {
	return m.CreateDefaultWindow(title, h)
}

// Entries returns the restorable view of every window.
func (m *Manager) Entries() []session.Entry {
	recs := m.store.All()
	out := make([]session.Entry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, session.Entry{
			Title:        rec.Title,
			X:            rec.Geometry.X,
			Y:            rec.Geometry.Y,
			Width:        rec.Geometry.Width,
			Height:       rec.Geometry.Height,
			DesktopIndex: rec.Desktop,
		})
	}
	return out
}

// SaveSession writes the current windows to the session store. A failure
// is logged and announced but never affects window state.
func (m *Manager) SaveSession(ctx context.Context) error {
	if err := m.sessions.Save(ctx, m.Entries()); err != nil {
		m.logger.Error("wm: session save failed", "error", err)
		if nerr := m.notifier.Notify("Berke0S", "session could not be saved"); nerr != nil {
			m.logger.Debug("wm: notification failed", "error", nerr)
		}
		var perr *session.PersistenceError
		if !errors.As(err, &perr) {
			err = &session.PersistenceError{Op: "save", Err: err}
		}
		return err
	}
	m.dirty = false
	return nil
}

// FlushSession saves only when geometry changed since the last save.
func (m *Manager) FlushSession(ctx context.Context) error {
	if !m.dirty || !m.opts.Autosave {
		return nil
	}
	return m.SaveSession(ctx)
}

// Dirty reports unsaved geometry changes.
func (m *Manager) Dirty() bool {
	return m.dirty
}

// RestoreSession recreates saved windows as placeholders and returns how many
// were restored. Desktops are added as needed to hold them.
func (m *Manager) RestoreSession(ctx context.Context) int {
	entries := m.sessions.Load(ctx)
	for _, e := range entries {
		desktop := e.DesktopIndex
		if desktop < 0 {
			desktop = 0
		}
		if desktop >= MaxRestoredDesktops {
			m.logger.Warn("wm: saved desktop index out of range", "title", e.Title,
				"desktop", e.DesktopIndex, "max", MaxRestoredDesktops-1)
			desktop = MaxRestoredDesktops - 1
		}
		for m.desktops.Count() <= desktop {
			m.desktops.Add()
		}
		title := e.Title
		if title == "" {
			title = RestoredTitle
		}
		m.createOn(title, PlaceholderContent, tiling.Rect{
			X: e.X, Y: e.Y, Width: e.Width, Height: e.Height,
		}, desktop)
	}
	if len(entries) > 0 {
		m.logger.Info("wm: session restored", "windows", len(entries))
	}
	return len(entries)
}

func (m *Manager) autosave() {
	m.dirty = true
	if !m.opts.Autosave {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	_ = m.SaveSession(ctx)
}

func (m *Manager) afterGeometry(id WindowID) {
	m.dirty = true
	if rec, err := m.store.Get(id); err == nil {
		m.place(rec)
	}
}

func (m *Manager) applyDesktopVisibility(prev int) {
	m.focus.Reset()
	if ids, err := m.desktops.Windows(prev); err == nil {
		for _, id := range ids {
			if rec, err := m.store.Get(id); err == nil {
				m.hide(rec)
			}
		}
	}
	for _, rec := range m.focus.Stacking(m.desktops.Active()) {
		m.show(rec)
		m.raise(rec)
	}
	m.logger.Debug("wm: desktop switched", "from", prev, "to", m.desktops.Active())
}

func (m *Manager) place(rec WindowRecord) {
	if rec.Content == PlaceholderContent {
		return
	}
	if err := m.surface.Place(rec.Content, rec.Geometry); err != nil {
		m.logger.Warn("wm: failed to place surface", "window", rec.ID, "error", err)
	}
}

func (m *Manager) show(rec WindowRecord) {
	if rec.Content == PlaceholderContent {
		return
	}
	if err := m.surface.Show(rec.Content); err != nil {
		m.logger.Warn("wm: failed to show surface", "window", rec.ID, "error", err)
	}
}

func (m *Manager) hide(rec WindowRecord) {
	if rec.Content == PlaceholderContent {
		return
	}
	if err := m.surface.Hide(rec.Content); err != nil {
		m.logger.Warn("wm: failed to hide surface", "window", rec.ID, "error", err)
	}
}

func (m *Manager) raise(rec WindowRecord) {
	if rec.Content == PlaceholderContent {
		return
	}
	if err := m.surface.Raise(rec.Content); err != nil {
		m.logger.Warn("wm: failed to raise surface", "window", rec.ID, "error", err)
	}
}
