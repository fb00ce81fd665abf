package wm

import (
	"fmt"

	"github.com/BreDEVs/kontrol-sub000/internal/tiling"
)

// EventType names a pointer or window event delivered to the manager.
type EventType int

const (
	DragStart EventType = iota
	DragMove
	DragEnd
	ResizeStart
	ResizeMove
	FocusRequest
	CloseRequest
)

// String returns the string representation of the event type
func (e EventType) String() string {
	switch e {
	case DragStart:
		return "drag-start"
	case DragMove:
		return "drag-move"
	case DragEnd:
		return "drag-end"
	case ResizeStart:
		return "resize-start"
	case ResizeMove:
		return "resize-move"
	case FocusRequest:
		return "focus-request"
	case CloseRequest:
		return "close-request"
	default:
		return "unknown"
	}
}

// Event is one input event aimed at a window. X and Y carry the pointer
// position for gesture events and are ignored otherwise.
type Event struct {
	Type   EventType
	Window WindowID
	X      int
	Y      int
}

type gestureKind int

const (
	gestureDrag gestureKind = iota
	gestureResize
)

// gesture is the geometry and pointer position captured when a drag or
// resize begins.
type gesture struct {
	kind     gestureKind
	start    tiling.Rect
	pointerX int
	pointerY int
}

type eventHandler func(m *Manager, ev Event) error

var eventHandlers = map[EventType]eventHandler{
	DragStart:    (*Manager).beginDrag,
	DragMove:     (*Manager).continueDrag,
	DragEnd:      (*Manager).endDrag,
	ResizeStart:  (*Manager).beginResize,
	ResizeMove:   (*Manager).continueResize,
	FocusRequest: func(m *Manager, ev Event) error { return m.Focus(ev.Window) },
	CloseRequest: func(m *Manager, ev Event) error { return m.CloseWindow(ev.Window) },
}

// Dispatch routes an event to its handler. Gesture events for a window that
// has since been closed are dropped silently.
func (m *Manager) Dispatch(ev Event) error {
	h, ok := eventHandlers[ev.Type]
	if !ok {
		return fmt.Errorf("unknown event type %d", int(ev.Type))
	}
	return h(m, ev)
}

func (m *Manager) beginDrag(ev Event) error {
	return m.beginGesture(gestureDrag, ev)
}

func (m *Manager) beginResize(ev Event) error {
	return m.beginGesture(gestureResize, ev)
}

func (m *Manager) beginGesture(kind gestureKind, ev Event) error {
	rec, err := m.store.Get(ev.Window)
	if err != nil {
		return fmt.Errorf("%s: %w", ev.Type, err)
	}
	m.gestures[ev.Window] = &gesture{
		kind:     kind,
		start:    rec.Geometry,
		pointerX: ev.X,
		pointerY: ev.Y,
	}
	return nil
}

// activeGesture returns the in-flight gesture of a kind, discarding it when
// the window no longer exists.
func (m *Manager) activeGesture(kind gestureKind, id WindowID) (*gesture, bool) {
	g, ok := m.gestures[id]
	if !ok || g.kind != kind {
		return nil, false
	}
	if _, err := m.store.Get(id); err != nil {
		delete(m.gestures, id)
		return nil, false
	}
	return g, true
}

func (m *Manager) continueDrag(ev Event) error {
	g, ok := m.activeGesture(gestureDrag, ev.Window)
	if !ok {
		return nil
	}
	x := g.start.X + ev.X - g.pointerX
	y := g.start.Y + ev.Y - g.pointerY
	return m.move(ev.Window, x, y, false)
}

func (m *Manager) endDrag(ev Event) error {
	g, ok := m.activeGesture(gestureDrag, ev.Window)
	if !ok {
		return nil
	}
	delete(m.gestures, ev.Window)
	x := g.start.X + ev.X - g.pointerX
	y := g.start.Y + ev.Y - g.pointerY
	return m.move(ev.Window, x, y, m.opts.SnapEnabled)
}

func (m *Manager) continueResize(ev Event) error {
	g, ok := m.activeGesture(gestureResize, ev.Window)
	if !ok {
		return nil
	}
	r := tiling.ResizeFromDelta(g.start, ev.X-g.pointerX, ev.Y-g.pointerY, m.store.MinSize())
	return m.Resize(ev.Window, r.Width, r.Height)
}
