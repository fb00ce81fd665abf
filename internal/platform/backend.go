package platform

import "errors"

// ErrNoWindow is returned when an operation names a window the backend does
// not know.
var ErrNoWindow = errors.New("window does not exist")

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes the screen the shell manages.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Backend abstracts the window-system operations the shell needs.
type Backend interface {
	Screen() (Display, error)
	Windows() ([]Window, error)
	WindowExists(id WindowID) bool
	MoveResize(id WindowID, bounds Rect) error
	Show(id WindowID) error
	Hide(id WindowID) error
	Raise(id WindowID) error
	Close(id WindowID) error
	SetOpacity(id WindowID, opacity float64) error
}

// WindowsByPID returns the windows owned by pid in backend order.
func WindowsByPID(b Backend, pid int) ([]Window, error) {
	all, err := b.Windows()
	if err != nil {
		return nil, err
	}
	var out []Window
	for _, w := range all {
		if w.PID == pid {
			out = append(out, w)
		}
	}
	return out, nil
}
