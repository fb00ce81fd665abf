package wm

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/BreDEVs/kontrol-sub000/internal/session"
	"github.com/BreDEVs/kontrol-sub000/internal/tiling"
)

type fakeSurface struct {
	placed  map[ContentHandle]tiling.Rect
	visible map[ContentHandle]bool
	raised  []ContentHandle
	closed  []ContentHandle
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		placed:  make(map[ContentHandle]tiling.Rect),
		visible: make(map[ContentHandle]bool),
	}
}

func (f *fakeSurface) Place(h ContentHandle, r tiling.Rect) error { f.placed[h] = r; return nil }
func (f *fakeSurface) Show(h ContentHandle) error                 { f.visible[h] = true; return nil }
func (f *fakeSurface) Hide(h ContentHandle) error                 { f.visible[h] = false; return nil }
func (f *fakeSurface) Raise(h ContentHandle) error                { f.raised = append(f.raised, h); return nil }
func (f *fakeSurface) Close(h ContentHandle) error                { f.closed = append(f.closed, h); return nil }

type failingSessions struct{}

func (failingSessions) Save(context.Context, []session.Entry) error {
	return &session.PersistenceError{Op: "save", Path: "/nowhere", Err: errors.New("disk full")}
}
func (failingSessions) Load(context.Context) []session.Entry { return []session.Entry{} }

type recordingNotifier struct {
	bodies []string
}

func (n *recordingNotifier) Notify(_, body string) error {
	n.bodies = append(n.bodies, body)
	return nil
}

type fakeLauncher struct {
	handle ContentHandle
	title  string
	err    error
}

func (l fakeLauncher) Launch(context.Context, string, []string) (ContentHandle, string, error) {
	return l.handle, l.title, l.err
}

func newTestManager(t *testing.T, deps Deps) *Manager {
	t.Helper()
	opts := DefaultOptions()
	opts.Autosave = false
	return NewManager(opts, deps)
}

func mustGet(t *testing.T, m *Manager, id WindowID) WindowRecord {
	t.Helper()
	rec, err := m.Window(id)
	if err != nil {
		t.Fatalf("Window(%d): %v", id, err)
	}
	return rec
}

func focusedID(t *testing.T, m *Manager) WindowID {
	t.Helper()
	rec, ok := m.Focused()
	if !ok {
		t.Fatalf("expected a focused window")
	}
	return rec.ID
}

func TestCreateWindow_ClampsAndCycleFocusReturnsToFirst(t *testing.T) {
	m := newTestManager(t, Deps{})

	w1 := m.CreateWindow("one", 0, 100, 100, 400, 300)
	w2 := m.CreateWindow("two", 0, 150, 150, 400, 300)
	w3 := m.CreateWindow("three", 0, 50, 50, 100, 80)

	got := mustGet(t, m, w3).Geometry
	if got != (tiling.Rect{X: 50, Y: 50, Width: 200, Height: 150}) {
		t.Fatalf("expected third window clamped to 50,50,200,150, got %+v", got)
	}
	if focusedID(t, m) != w3 {
		t.Fatalf("expected newest window to be focused")
	}

	if id, ok := m.CycleFocus(); !ok || id != w2 {
		t.Fatalf("expected first cycle to focus %d, got %d (ok=%v)", w2, id, ok)
	}
	if id, ok := m.CycleFocus(); !ok || id != w1 {
		t.Fatalf("expected second cycle to focus %d, got %d (ok=%v)", w1, id, ok)
	}
	if focusedID(t, m) != w1 {
		t.Fatalf("expected first window focused after two cycles")
	}
	if id, _ := m.CycleFocus(); id != w3 {
		t.Fatalf("expected cycle to wrap to %d, got %d", w3, id)
	}
}

func TestCycleFocus_NoOpWithOneWindow(t *testing.T) {
	m := newTestManager(t, Deps{})
	if _, ok := m.CycleFocus(); ok {
		t.Fatalf("expected no-op on empty desktop")
	}
	w := m.CreateWindow("solo", 0, 0, 0, 300, 300)
	before := mustGet(t, m, w).ZRank
	if _, ok := m.CycleFocus(); ok {
		t.Fatalf("expected no-op with one window")
	}
	if mustGet(t, m, w).ZRank != before {
		t.Fatalf("expected z-rank untouched")
	}
}

func TestCycleFocus_RestartsAfterExplicitFocus(t *testing.T) {
	m := newTestManager(t, Deps{})
	w1 := m.CreateWindow("one", 0, 0, 0, 300, 300)
	w2 := m.CreateWindow("two", 0, 0, 0, 300, 300)
	m.CreateWindow("three", 0, 0, 0, 300, 300)

	m.CycleFocus() // w2
	if err := m.Focus(w1); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	// New snapshot from the top: w1, w2, w3.
	if id, _ := m.CycleFocus(); id != w2 {
		t.Fatalf("expected %d after refocus, got %d", w2, id)
	}
}

func TestDrag_SnapsLeftRegardlessOfSize(t *testing.T) {
	m := newTestManager(t, Deps{})
	w := m.CreateWindow("w", 0, 300, 300, 640, 480)

	if err := m.Drag(w, 5, 200); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	screen := m.Screen()
	want := tiling.Rect{X: 0, Y: 0, Width: screen.Width / 2, Height: screen.Height - screen.TaskbarHeight}
	if got := mustGet(t, m, w).Geometry; got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestDrag_NoSnapWhenDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Autosave = false
	opts.SnapEnabled = false
	m := NewManager(opts, Deps{})
	w := m.CreateWindow("w", 0, 300, 300, 400, 300)

	if err := m.Drag(w, 5, 5); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	if got := mustGet(t, m, w).Geometry; got != (tiling.Rect{X: 5, Y: 5, Width: 400, Height: 300}) {
		t.Fatalf("expected verbatim position, got %+v", got)
	}
}

func TestAddDesktopAndSwitchOutOfRange(t *testing.T) {
	m := newTestManager(t, Deps{})
	if got := m.AddDesktop(); got != 1 {
		t.Fatalf("expected index 1, got %d", got)
	}
	if got := m.AddDesktop(); got != 2 {
		t.Fatalf("expected index 2, got %d", got)
	}

	err := m.SwitchTo(5)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if m.ActiveDesktop() != 0 {
		t.Fatalf("expected active desktop unchanged, got %d", m.ActiveDesktop())
	}
}

func TestCloseWindow_TwiceReportsNotFoundWithoutSideEffects(t *testing.T) {
	surface := newFakeSurface()
	m := newTestManager(t, Deps{Surface: surface})
	keep := m.CreateWindow("keep", 7, 0, 0, 300, 300)
	w := m.CreateWindow("gone", 9, 0, 0, 300, 300)

	if err := m.CloseWindow(w); err != nil {
		t.Fatalf("first close: %v", err)
	}
	ids, _ := m.desktops.Windows(0)
	if len(ids) != 1 || ids[0] != keep {
		t.Fatalf("expected only %d on desktop 0, got %v", keep, ids)
	}

	before := len(m.Windows())
	err := m.CloseWindow(w)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(m.Windows()) != before {
		t.Fatalf("expected window set unchanged")
	}
	if len(surface.closed) != 1 || surface.closed[0] != 9 {
		t.Fatalf("expected exactly one surface close, got %v", surface.closed)
	}
	if focusedID(t, m) != keep {
		t.Fatalf("expected remaining window promoted to focus")
	}
}

func TestCloseWindow_PromotesNextHighest(t *testing.T) {
	m := newTestManager(t, Deps{})
	w1 := m.CreateWindow("one", 0, 0, 0, 300, 300)
	w2 := m.CreateWindow("two", 0, 0, 0, 300, 300)
	w3 := m.CreateWindow("three", 0, 0, 0, 300, 300)
	if err := m.Focus(w1); err != nil {
		t.Fatalf("Focus: %v", err)
	}

	if err := m.CloseWindow(w1); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	if focusedID(t, m) != w3 {
		t.Fatalf("expected %d focused, got %d", w3, focusedID(t, m))
	}
	_ = m.CloseWindow(w3)
	if focusedID(t, m) != w2 {
		t.Fatalf("expected %d focused", w2)
	}
	_ = m.CloseWindow(w2)
	if _, ok := m.Focused(); ok {
		t.Fatalf("expected empty desktop to have no focus")
	}
}

func TestMaximizeToggle_RoundTrip(t *testing.T) {
	m := newTestManager(t, Deps{})
	w := m.CreateWindow("w", 0, 123, 45, 321, 210)
	orig := mustGet(t, m, w).Geometry

	if err := m.MaximizeToggle(w); err != nil {
		t.Fatalf("maximize: %v", err)
	}
	rec := mustGet(t, m, w)
	if rec.State != StateMaximized || rec.Geometry != tiling.Maximized(m.Screen()) {
		t.Fatalf("expected maximized geometry, got %s %+v", rec.State, rec.Geometry)
	}

	if err := m.MaximizeToggle(w); err != nil {
		t.Fatalf("restore: %v", err)
	}
	rec = mustGet(t, m, w)
	if rec.State != StateNormal || rec.Geometry != orig || rec.Restore != nil {
		t.Fatalf("expected exact restore to %+v, got %s %+v", orig, rec.State, rec.Geometry)
	}
}

func TestMaximize_SecondCallIsNoOp(t *testing.T) {
	m := newTestManager(t, Deps{})
	w := m.CreateWindow("w", 0, 10, 20, 300, 200)
	_ = m.Maximize(w)
	_ = m.Maximize(w)
	_ = m.Restore(w)
	if got := mustGet(t, m, w).Geometry; got != (tiling.Rect{X: 10, Y: 20, Width: 300, Height: 200}) {
		t.Fatalf("expected original geometry after double maximize, got %+v", got)
	}
}

func TestFocus_SwitchesToOwningDesktop(t *testing.T) {
	surface := newFakeSurface()
	m := newTestManager(t, Deps{Surface: surface})
	a := m.CreateWindow("a", 1, 0, 0, 300, 300)
	m.AddDesktop()
	if err := m.MoveToDesktop(a, 1); err != nil {
		t.Fatalf("MoveToDesktop: %v", err)
	}
	if surface.visible[1] {
		t.Fatalf("expected moved window hidden")
	}
	b := m.CreateWindow("b", 2, 0, 0, 300, 300)

	if err := m.Focus(a); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if m.ActiveDesktop() != 1 {
		t.Fatalf("expected desktop 1 active, got %d", m.ActiveDesktop())
	}
	if !surface.visible[1] || surface.visible[2] {
		t.Fatalf("expected desktop visibility to follow switch: %v", surface.visible)
	}
	if mustGet(t, m, a).ZRank <= mustGet(t, m, b).ZRank {
		t.Fatalf("expected focused window above every other")
	}
}

func TestSwitchDesktop_DoesNotWrap(t *testing.T) {
	m := newTestManager(t, Deps{})
	m.AddDesktop()
	if got := m.SwitchDesktop(Previous); got != 0 {
		t.Fatalf("expected previous at 0 to stay at 0, got %d", got)
	}
	if got := m.SwitchDesktop(Next); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := m.SwitchDesktop(Next); got != 1 {
		t.Fatalf("expected next at last to stay, got %d", got)
	}
}

func TestMinimize_SkippedByFocusAndRestoredOnFocus(t *testing.T) {
	m := newTestManager(t, Deps{})
	w1 := m.CreateWindow("one", 0, 0, 0, 300, 300)
	w2 := m.CreateWindow("two", 0, 0, 0, 300, 300)

	if err := m.Minimize(w2); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if focusedID(t, m) != w1 {
		t.Fatalf("expected focus to move off minimized window")
	}
	if _, ok := m.CycleFocus(); ok {
		t.Fatalf("expected cycle to ignore minimized window")
	}

	if err := m.Focus(w2); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	if rec := mustGet(t, m, w2); rec.State != StateNormal {
		t.Fatalf("expected focus to restore window, got %s", rec.State)
	}
}

func TestTile_ArrangesVisibleWindows(t *testing.T) {
	m := newTestManager(t, Deps{})
	for i := 0; i < 4; i++ {
		m.CreateWindow("w", 0, 0, 0, 300, 300)
	}
	if n := m.Tile(); n != 4 {
		t.Fatalf("expected 4 windows tiled, got %d", n)
	}
	usable := m.Screen().Usable()
	for _, rec := range m.Windows() {
		if rec.Geometry.X+rec.Geometry.Width > usable.Width || rec.Geometry.Y+rec.Geometry.Height > usable.Height {
			t.Fatalf("window %d outside usable area: %+v", rec.ID, rec.Geometry)
		}
	}
}

func TestSession_RoundTripRestoresPlaceholders(t *testing.T) {
	store := &memorySessions{}
	m := newTestManager(t, Deps{Sessions: store})
	m.AddDesktop()
	a := m.CreateWindow("Terminal", 11, 10, 20, 400, 300)
	b := m.CreateWindow("Files", 12, 30, 40, 500, 350)
	if err := m.MoveToDesktop(b, 1); err != nil {
		t.Fatalf("MoveToDesktop: %v", err)
	}
	_ = a

	if err := m.SaveSession(context.Background()); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	want := m.Entries()

	restored := newTestManager(t, Deps{Sessions: store})
	if n := restored.RestoreSession(context.Background()); n != 2 {
		t.Fatalf("expected 2 restored windows, got %d", n)
	}
	got := restored.Entries()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	for _, rec := range restored.Windows() {
		if rec.Content != PlaceholderContent {
			t.Fatalf("expected placeholder content for restored window")
		}
	}
	if restored.DesktopCount() != 2 {
		t.Fatalf("expected desktops added for restored windows")
	}
}

func TestSaveSession_FailureNotifiesAndKeepsState(t *testing.T) {
	notifier := &recordingNotifier{}
	m := newTestManager(t, Deps{Sessions: failingSessions{}, Notifier: notifier})
	w := m.CreateWindow("w", 0, 0, 0, 300, 300)

	err := m.SaveSession(context.Background())
	var perr *session.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if len(notifier.bodies) != 1 || notifier.bodies[0] != "session could not be saved" {
		t.Fatalf("expected failure notification, got %v", notifier.bodies)
	}
	if _, err := m.Window(w); err != nil {
		t.Fatalf("expected window to survive failed save")
	}
}

func TestAutosave_SavesOnCreateAndClose(t *testing.T) {
	store := &memorySessions{}
	m := NewManager(DefaultOptions(), Deps{Sessions: store})
	w := m.CreateWindow("w", 0, 0, 0, 300, 300)
	if len(store.entries) != 1 {
		t.Fatalf("expected create to persist, got %d entries", len(store.entries))
	}
	_ = m.CloseWindow(w)
	if len(store.entries) != 0 {
		t.Fatalf("expected close to persist, got %d entries", len(store.entries))
	}
}

func TestFlushSession_OnlyWhenDirty(t *testing.T) {
	store := &memorySessions{}
	opts := DefaultOptions()
	m := NewManager(opts, Deps{Sessions: store})
	w := m.CreateWindow("w", 0, 0, 0, 300, 300)
	if m.Dirty() {
		t.Fatalf("expected clean state after autosave")
	}
	_ = m.Resize(w, 500, 400)
	if !m.Dirty() {
		t.Fatalf("expected resize to mark session dirty")
	}
	if err := m.FlushSession(context.Background()); err != nil {
		t.Fatalf("FlushSession: %v", err)
	}
	if store.entries[0].Width != 500 || m.Dirty() {
		t.Fatalf("expected flushed geometry, got %+v", store.entries[0])
	}
}

func TestLaunchApp_AdoptsSurface(t *testing.T) {
	m := newTestManager(t, Deps{Launcher: fakeLauncher{handle: 42, title: "aterm"}})
	id, err := m.LaunchApp(context.Background(), "terminal", nil)
	if err != nil {
		t.Fatalf("LaunchApp: %v", err)
	}
	rec := mustGet(t, m, id)
	if rec.Content != 42 || rec.Title != "aterm" {
		t.Fatalf("unexpected launched window: %+v", rec)
	}
	if got, ok := m.WindowByContent(42); !ok || got != id {
		t.Fatalf("expected lookup by content to find %d", id)
	}

	failing := newTestManager(t, Deps{Launcher: fakeLauncher{err: errors.New("boom")}})
	if _, err := failing.LaunchApp(context.Background(), "terminal", nil); err == nil {
		t.Fatalf("expected launcher error")
	}
	if len(failing.Windows()) != 0 {
		t.Fatalf("expected no window after failed launch")
	}
}

func TestRandomOperations_PreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := newTestManager(t, Deps{})
	m.AddDesktop()
	m.AddDesktop()
	minSize := m.Options().MinSize

	var ids []WindowID
	for step := 0; step < 2000; step++ {
		pick := func() WindowID {
			if len(ids) == 0 {
				return WindowID(rng.Intn(5) + 1)
			}
			return ids[rng.Intn(len(ids))]
		}
		switch rng.Intn(10) {
		case 0:
			ids = append(ids, m.CreateWindow("w", 0, rng.Intn(800)-100, rng.Intn(600)-100, rng.Intn(700)-50, rng.Intn(500)-50))
		case 1:
			_ = m.Resize(pick(), rng.Intn(900)-200, rng.Intn(900)-200)
		case 2:
			_ = m.Drag(pick(), rng.Intn(1100)-50, rng.Intn(800)-50)
		case 3:
			_ = m.MoveToDesktop(pick(), rng.Intn(4))
		case 4:
			_ = m.Focus(pick())
		case 5:
			_ = m.CloseWindow(pick())
		case 6:
			m.CycleFocus()
		case 7:
			_ = m.MaximizeToggle(pick())
		case 8:
			_ = m.SwitchTo(rng.Intn(4))
		case 9:
			_ = m.Minimize(pick())
		}

		seen := make(map[WindowID]int)
		for d := 0; d < m.DesktopCount(); d++ {
			members, _ := m.desktops.Windows(d)
			for _, id := range members {
				seen[id]++
			}
		}
		for _, rec := range m.Windows() {
			if rec.Geometry.Width < minSize.Width || rec.Geometry.Height < minSize.Height {
				t.Fatalf("step %d: window %d below minimum: %+v", step, rec.ID, rec.Geometry)
			}
			if rec.State == StateMaximized && rec.Geometry != tiling.Maximized(m.Screen()) {
				t.Fatalf("step %d: maximized window %d off the usable area: %+v", step, rec.ID, rec.Geometry)
			}
			if rec.State == StateNormal && rec.Restore != nil {
				t.Fatalf("step %d: normal window %d kept restore geometry", step, rec.ID)
			}
			if seen[rec.ID] != 1 {
				t.Fatalf("step %d: window %d on %d desktops", step, rec.ID, seen[rec.ID])
			}
		}
		if len(seen) != len(m.Windows()) {
			t.Fatalf("step %d: desktop membership references closed windows", step)
		}

		for d := 0; d < m.DesktopCount(); d++ {
			stack, _ := m.DesktopWindows(d)
			for i := 1; i < len(stack); i++ {
				if stack[i].ZRank == stack[i-1].ZRank {
					t.Fatalf("step %d: duplicate z-rank on desktop %d", step, d)
				}
			}
		}
	}
}

func TestMinimizedMaximizedWindow_DragComesBackNormal(t *testing.T) {
	m := newTestManager(t, Deps{})
	w := m.CreateWindow("w", 7, 100, 100, 400, 300)

	_ = m.Maximize(w)
	if err := m.Minimize(w); err != nil {
		t.Fatalf("Minimize: %v", err)
	}
	if err := m.Drag(w, 300, 300); err != nil {
		t.Fatalf("Drag: %v", err)
	}
	if err := m.Focus(w); err != nil {
		t.Fatalf("Focus: %v", err)
	}

	rec := mustGet(t, m, w)
	if rec.State != StateNormal || rec.Restore != nil {
		t.Fatalf("expected a normal window without restore geometry, got %s restore=%v", rec.State, rec.Restore)
	}
}

func TestMinimizedMaximizedWindow_ResizeComesBackNormal(t *testing.T) {
	m := newTestManager(t, Deps{})
	w := m.CreateWindow("w", 7, 100, 100, 400, 300)

	_ = m.Maximize(w)
	_ = m.Minimize(w)
	if err := m.Resize(w, 500, 400); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	_ = m.Focus(w)

	rec := mustGet(t, m, w)
	if rec.State != StateNormal || rec.Geometry.Width != 500 || rec.Geometry.Height != 400 {
		t.Fatalf("expected normal 500x400, got %s %+v", rec.State, rec.Geometry)
	}
}

func TestMoveToDesktop_RaisesSurfaceOnActiveDesktop(t *testing.T) {
	surface := newFakeSurface()
	m := newTestManager(t, Deps{Surface: surface})
	a := m.CreateWindow("a", 11, 0, 0, 300, 300)
	m.AddDesktop()
	if err := m.SwitchTo(1); err != nil {
		t.Fatalf("SwitchTo: %v", err)
	}
	b := m.CreateWindow("b", 12, 0, 0, 300, 300)
	surface.raised = nil

	if err := m.MoveToDesktop(a, 1); err != nil {
		t.Fatalf("MoveToDesktop: %v", err)
	}
	if focusedID(t, m) != a {
		t.Fatalf("expected moved window %d focused over %d", a, b)
	}
	if len(surface.raised) == 0 || surface.raised[len(surface.raised)-1] != 11 {
		t.Fatalf("expected surface 11 raised, got %v", surface.raised)
	}
	if !surface.visible[11] {
		t.Fatalf("expected moved surface shown")
	}
}

func TestRestoreSession_BoundsDesktopIndex(t *testing.T) {
	store := &memorySessions{entries: []session.Entry{
		{Title: "far", X: 10, Y: 10, Width: 300, Height: 200, DesktopIndex: 2000000},
		{Title: "near", X: 10, Y: 10, Width: 300, Height: 200, DesktopIndex: 2},
	}}
	m := newTestManager(t, Deps{Sessions: store})

	if n := m.RestoreSession(context.Background()); n != 2 {
		t.Fatalf("expected 2 restored windows, got %d", n)
	}
	if got := m.DesktopCount(); got != MaxRestoredDesktops {
		t.Fatalf("expected %d desktops, got %d", MaxRestoredDesktops, got)
	}
	for _, rec := range m.Windows() {
		if rec.Title == "far" && rec.Desktop != MaxRestoredDesktops-1 {
			t.Fatalf("expected far window on the last desktop, got %d", rec.Desktop)
		}
		if rec.Title == "near" && rec.Desktop != 2 {
			t.Fatalf("expected near window on desktop 2, got %d", rec.Desktop)
		}
	}
}

func TestReconfigure_AppliesMinSize(t *testing.T) {
	m := newTestManager(t, Deps{})
	w := m.CreateWindow("w", 0, 0, 0, 300, 200)

	opts := m.Options()
	opts.MinSize = tiling.Size{Width: 500, Height: 250}
	m.Reconfigure(opts)

	if got := m.Options().MinSize; got != opts.MinSize {
		t.Fatalf("expected min size %+v, got %+v", opts.MinSize, got)
	}
	if got := mustGet(t, m, w).Geometry; got.Width != 500 || got.Height != 250 {
		t.Fatalf("expected existing window grown to the new minimum, got %+v", got)
	}
	if err := m.Resize(w, 100, 100); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got := mustGet(t, m, w).Geometry; got.Width != 500 || got.Height != 250 {
		t.Fatalf("expected resize clamped to the new minimum, got %+v", got)
	}
}
