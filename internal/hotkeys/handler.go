package hotkeys

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/BreDEVs/kontrol-sub000/internal/config"
	"github.com/BreDEVs/kontrol-sub000/internal/wm"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Action runs against the window manager on the daemon's event loop.
type Action func(m *wm.Manager) error

// Poster queues an action on the event loop without blocking.
type Poster func(fn func(*wm.Manager) error) error

// Binding ties a key sequence to an action.
type Binding struct {
	Name   string
	Keys   string
	Action Action
}

// Bindings returns the bound actions for the configured hotkeys. Actions
// with an empty key sequence are left out.
func Bindings(h config.Hotkeys) []Binding {
	all := []Binding{
		{Name: "cycle_focus", Keys: h.CycleFocus, Action: func(m *wm.Manager) error {
			m.CycleFocus()
			return nil
		}},
		{Name: "next_desktop", Keys: h.NextDesktop, Action: func(m *wm.Manager) error {
			m.SwitchDesktop(wm.Next)
			return nil
		}},
		{Name: "previous_desktop", Keys: h.PreviousDesktop, Action: func(m *wm.Manager) error {
			m.SwitchDesktop(wm.Previous)
			return nil
		}},
		{Name: "maximize", Keys: h.Maximize, Action: onFocused((*wm.Manager).MaximizeToggle)},
		{Name: "minimize", Keys: h.Minimize, Action: onFocused((*wm.Manager).Minimize)},
		{Name: "close", Keys: h.Close, Action: onFocused((*wm.Manager).CloseWindow)},
		{Name: "tile", Keys: h.Tile, Action: func(m *wm.Manager) error {
			m.Tile()
			return nil
		}},
		{Name: "add_desktop", Keys: h.AddDesktop, Action: func(m *wm.Manager) error {
			m.AddDesktop()
			return nil
		}},
	}

	out := all[:0]
	for _, b := range all {
		if b.Keys != "" {
			out = append(out, b)
		}
	}
	return out
}

// onFocused applies op to the focused window; with nothing focused it does
// nothing.
func onFocused(op func(*wm.Manager, wm.WindowID) error) Action {
	return func(m *wm.Manager) error {
		rec, ok := m.Focused()
		if !ok {
			return nil
		}
		return op(m, rec.ID)
	}
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	post   Poster
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler on an X connection. Triggered actions
// are handed to post.
func NewHandler(xu *xgbutil.XUtil, post Poster, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	h := &Handler{xu: xu, post: post, logger: logger}
	if xu != nil {
		h.root = xu.RootWin()
	}
	return h
}

// RegisterAll grabs every binding. A binding that fails to register is
// logged and skipped; the number registered is returned.
func (h *Handler) RegisterAll(bindings []Binding) int {
	n := 0
	for _, b := range bindings {
		if err := h.Register(b); err != nil {
			h.logger.Warn("hotkeys: failed to register", "action", b.Name, "keys", b.Keys, "error", err)
			continue
		}
		h.logger.Info("hotkeys: registered", "action", b.Name, "keys", b.Keys)
		n++
	}
	return n
}

// Register grabs one binding.
func (h *Handler) Register(b Binding) error {
	action := b.Action
	name := b.Name
	return h.RegisterFunc(b.Keys, func() {
		if err := h.post(action); err != nil {
			h.logger.Warn("hotkeys: action dropped", "action", name, "error", err)
		}
	})
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	if h.xu == nil {
		return fmt.Errorf("no X connection")
	}
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// UnregisterAll releases every grabbed key, before re-binding on reload.
func (h *Handler) UnregisterAll() {
	if h.xu == nil {
		return
	}
	keybind.Detach(h.xu, h.root)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	if xu == nil {
		return
	}
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
