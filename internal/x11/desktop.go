package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// sourcePager marks client messages as coming from a pager or taskbar.
const sourcePager = 2

// ActivateWindow raises, focuses and de-iconifies a window through
// _NET_ACTIVE_WINDOW.
func (c *Connection) ActivateWindow(windowID uint32) error {
	if err := c.sendRootMessage(xproto.Window(windowID), "_NET_ACTIVE_WINDOW", sourcePager); err != nil {
		return fmt.Errorf("activate window 0x%x: %w", windowID, err)
	}
	return nil
}

// IconifyWindow asks the window manager to minimize a window through
// WM_CHANGE_STATE.
func (c *Connection) IconifyWindow(windowID uint32) error {
	const iconicState = 3
	if err := c.sendRootMessage(xproto.Window(windowID), "WM_CHANGE_STATE", iconicState); err != nil {
		return fmt.Errorf("iconify window 0x%x: %w", windowID, err)
	}
	return nil
}

// MapWindow maps a window that was never shown or was withdrawn.
func (c *Connection) MapWindow(windowID uint32) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), xproto.Window(windowID)).Check()
}

// DeleteWindow asks a client to close gracefully via WM_DELETE_WINDOW.
func (c *Connection) DeleteWindow(windowID uint32) error {
	protocols, err := c.atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	del, err := c.atom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(windowID),
		Type:   protocols,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(del), 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		xproto.Window(windowID),
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY; 1.0 is fully opaque.
func (c *Connection) SetOpacity(windowID uint32, opacity float64) error {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return ewmh.WmWindowOpacitySet(c.XUtil, xproto.Window(windowID), opacity)
}

// ClientList returns the top-level client windows the window manager knows.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// WindowPID returns _NET_WM_PID, or 0 when the client does not set it.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// OnActiveWindowChange calls fn with the new _NET_ACTIVE_WINDOW whenever
// the window manager changes it. Callbacks run on the event loop goroutine.
func (c *Connection) OnActiveWindowChange(fn func(xproto.Window)) error {
	active, err := c.atom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return err
	}
	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Atom != active {
			return
		}
		id, err := ewmh.ActiveWindowGet(xu)
		if err != nil || id == 0 {
			return
		}
		fn(id)
	}).Connect(c.XUtil, c.Root)
	return nil
}
