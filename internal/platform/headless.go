package platform

import (
	"fmt"
	"sort"
	"sync"
)

// HeadlessWindow is the state the headless backend keeps per window.
type HeadlessWindow struct {
	Window
	Visible bool
	Opacity float64
	Stack   int
}

// HeadlessBackend is an in-memory Backend used when no X display is
// available and in tests.
type HeadlessBackend struct {
	mu      sync.Mutex
	screen  Display
	windows map[WindowID]*HeadlessWindow
	nextID  WindowID
	stack   int
	closed  []WindowID
}

var _ Backend = (*HeadlessBackend)(nil)

// NewHeadlessBackend returns a backend with a single screen of the given size.
func NewHeadlessBackend(width, height int) *HeadlessBackend {
	return &HeadlessBackend{
		screen:  Display{Name: "headless", Bounds: Rect{Width: width, Height: height}},
		windows: make(map[WindowID]*HeadlessWindow),
		nextID:  0x400000,
	}
}

// Open registers a new visible client window, as if a process had mapped it.
func (h *HeadlessBackend) Open(pid int, appID, title string, bounds Rect) WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	h.stack++
	id := h.nextID
	h.windows[id] = &HeadlessWindow{
		Window:  Window{ID: id, PID: pid, AppID: appID, Title: title, Bounds: bounds},
		Visible: true,
		Opacity: 1,
		Stack:   h.stack,
	}
	return id
}

// Vanish removes a window without a close request, as when a client exits.
func (h *HeadlessBackend) Vanish(id WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.windows, id)
}

// State returns a copy of a window's headless state.
func (h *HeadlessBackend) State(id WindowID) (HeadlessWindow, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.windows[id]
	if !ok {
		return HeadlessWindow{}, false
	}
	return *w, true
}

// Closed lists the windows that received a close request, oldest first.
func (h *HeadlessBackend) Closed() []WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]WindowID(nil), h.closed...)
}

// Resize changes the reported screen size.
func (h *HeadlessBackend) Resize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.screen.Bounds.Width = width
	h.screen.Bounds.Height = height
}

func (h *HeadlessBackend) Screen() (Display, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.screen, nil
}

func (h *HeadlessBackend) Windows() ([]Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Window, 0, len(h.windows))
	for _, w := range h.windows {
		out = append(out, w.Window)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (h *HeadlessBackend) WindowExists(id WindowID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.windows[id]
	return ok
}

func (h *HeadlessBackend) MoveResize(id WindowID, bounds Rect) error {
	return h.update(id, func(w *HeadlessWindow) { w.Bounds = bounds })
}

func (h *HeadlessBackend) Show(id WindowID) error {
	return h.update(id, func(w *HeadlessWindow) { w.Visible = true })
}

func (h *HeadlessBackend) Hide(id WindowID) error {
	return h.update(id, func(w *HeadlessWindow) { w.Visible = false })
}

func (h *HeadlessBackend) Raise(id WindowID) error {
	return h.update(id, func(w *HeadlessWindow) {
		h.stack++
		w.Stack = h.stack
	})
}

func (h *HeadlessBackend) SetOpacity(id WindowID, opacity float64) error {
	return h.update(id, func(w *HeadlessWindow) { w.Opacity = opacity })
}

// Close records the request and removes the window.
func (h *HeadlessBackend) Close(id WindowID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.windows[id]; !ok {
		return fmt.Errorf("close 0x%x: %w", uint32(id), ErrNoWindow)
	}
	delete(h.windows, id)
	h.closed = append(h.closed, id)
	return nil
}

func (h *HeadlessBackend) update(id WindowID, fn func(*HeadlessWindow)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	w, ok := h.windows[id]
	if !ok {
		return fmt.Errorf("window 0x%x: %w", uint32(id), ErrNoWindow)
	}
	fn(w)
	return nil
}
