package hotkeys

import (
	"testing"

	"github.com/BreDEVs/kontrol-sub000/internal/config"
	"github.com/BreDEVs/kontrol-sub000/internal/wm"
)

func bindingByName(t *testing.T, bindings []Binding, name string) Binding {
	t.Helper()
	for _, b := range bindings {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("binding %q not found", name)
	return Binding{}
}

func newManager() *wm.Manager {
	opts := wm.DefaultOptions()
	opts.Autosave = false
	return wm.NewManager(opts, wm.Deps{})
}

func TestBindings_SkipsUnboundActions(t *testing.T) {
	h := config.DefaultConfig().Hotkeys
	h.Tile = ""

	bindings := Bindings(h)
	if len(bindings) != 7 {
		t.Fatalf("expected 7 bindings, got %d", len(bindings))
	}
	for _, b := range bindings {
		if b.Name == "tile" {
			t.Fatalf("expected tile to be unbound")
		}
	}
}

func TestBindings_ActOnFocusedWindow(t *testing.T) {
	bindings := Bindings(config.DefaultConfig().Hotkeys)
	m := newManager()
	a := m.CreateWindow("a", 0, 10, 10, 300, 300)
	b := m.CreateWindow("b", 0, 20, 20, 300, 300)

	if err := bindingByName(t, bindings, "maximize").Action(m); err != nil {
		t.Fatalf("maximize: %v", err)
	}
	rec, _ := m.Window(b)
	if rec.State != wm.StateMaximized {
		t.Fatalf("expected focused window maximized, got %s", rec.State)
	}

	if err := bindingByName(t, bindings, "close").Action(m); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := m.Window(b); err == nil {
		t.Fatalf("expected focused window closed")
	}
	if rec, ok := m.Focused(); !ok || rec.ID != a {
		t.Fatalf("expected %d focused after close", a)
	}
}

func TestBindings_NoFocusedWindowIsNoop(t *testing.T) {
	bindings := Bindings(config.DefaultConfig().Hotkeys)
	m := newManager()
	for _, name := range []string{"maximize", "minimize", "close", "cycle_focus", "tile"} {
		if err := bindingByName(t, bindings, name).Action(m); err != nil {
			t.Fatalf("%s on empty desktop: %v", name, err)
		}
	}
}

func TestBindings_DesktopActions(t *testing.T) {
	bindings := Bindings(config.DefaultConfig().Hotkeys)
	m := newManager()

	_ = bindingByName(t, bindings, "add_desktop").Action(m)
	if m.DesktopCount() != 2 {
		t.Fatalf("expected 2 desktops, got %d", m.DesktopCount())
	}
	_ = bindingByName(t, bindings, "next_desktop").Action(m)
	if m.ActiveDesktop() != 1 {
		t.Fatalf("expected desktop 1 active, got %d", m.ActiveDesktop())
	}
	_ = bindingByName(t, bindings, "previous_desktop").Action(m)
	if m.ActiveDesktop() != 0 {
		t.Fatalf("expected desktop 0 active, got %d", m.ActiveDesktop())
	}
}

func TestHandler_PostsActions(t *testing.T) {
	var posted int
	h := NewHandler(nil, func(fn func(*wm.Manager) error) error {
		posted++
		return fn(newManager())
	}, nil)

	if err := h.RegisterFunc("Mod4-t", func() {}); err == nil {
		t.Fatalf("expected error without an X connection")
	}
	if n := h.RegisterAll(Bindings(config.DefaultConfig().Hotkeys)); n != 0 {
		t.Fatalf("expected nothing registered without X, got %d", n)
	}
	if posted != 0 {
		t.Fatalf("expected no actions posted at registration")
	}
}
