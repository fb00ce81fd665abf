//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BreDEVs/kontrol-sub000/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// LinuxBackend drives an X11 display through EWMH requests.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend wraps an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh connection to display ("" for
// $DISPLAY).
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop runs the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the xgbutil connection for hotkey registration.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// Screen returns the monitor under the pointer.
func (b *LinuxBackend) Screen() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}
	m, err := conn.PrimaryMonitor()
	if err != nil {
		return Display{}, err
	}
	return Display{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
	}, nil
}

// Windows lists normal client windows sorted by id.
func (b *LinuxBackend) Windows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, id := range clients {
		if !conn.IsNormalWindow(id) || b.skipByState(id) {
			continue
		}
		x, y, w, h, ok := conn.Geometry(id)
		if !ok {
			continue
		}
		windows = append(windows, Window{
			ID:     WindowID(id),
			PID:    conn.WindowPID(id),
			AppID:  conn.WindowClass(id),
			Title:  conn.WindowTitle(id),
			Bounds: Rect{X: x, Y: y, Width: w, Height: h},
		})
	}

	sort.Slice(windows, func(i, j int) bool {
		return windows[i].ID < windows[j].ID
	})
	return windows, nil
}

// WindowExists reports whether the X server still knows id.
func (b *LinuxBackend) WindowExists(id WindowID) bool {
	conn, err := b.connection()
	if err != nil {
		return false
	}
	return conn.WindowExists(xproto.Window(id))
}

// MoveResize moves and resizes a window.
func (b *LinuxBackend) MoveResize(id WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(id), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

// Show maps a window and asks the window manager to de-iconify it.
func (b *LinuxBackend) Show(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if err := conn.MapWindow(uint32(id)); err != nil {
		return err
	}
	return conn.ActivateWindow(uint32(id))
}

// Hide iconifies a window via WM_CHANGE_STATE.
func (b *LinuxBackend) Hide(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.IconifyWindow(uint32(id))
}

// Raise activates a window via _NET_ACTIVE_WINDOW.
func (b *LinuxBackend) Raise(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ActivateWindow(uint32(id))
}

// Close requests a graceful close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(id WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.DeleteWindow(uint32(id))
}

// SetOpacity sets the compositor opacity hint.
func (b *LinuxBackend) SetOpacity(id WindowID, opacity float64) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetOpacity(uint32(id), opacity)
}

// WatchActiveWindow reports focus changes made outside the shell, such as
// a click on another window.
func (b *LinuxBackend) WatchActiveWindow(fn func(WindowID)) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.OnActiveWindowChange(func(id xproto.Window) {
		fn(WindowID(id))
	})
}

func (b *LinuxBackend) skipByState(id xproto.Window) bool {
	states, err := ewmh.WmStateGet(b.conn.XUtil, id)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_SKIP_TASKBAR" {
			return true
		}
	}
	return false
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
