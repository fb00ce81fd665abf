package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/BreDEVs/kontrol-sub000/internal/ipc"
)

type fakeDaemon struct {
	windows  ipc.WindowsData
	created  []ipc.CreateWindowPayload
	closed   []uint64
	focused  []uint64
	active   int
	launched []string
	saves    int
	err      error
}

func (f *fakeDaemon) ListWindows() (*ipc.WindowsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.windows, nil
}

func (f *fakeDaemon) CreateWindow(p ipc.CreateWindowPayload) (uint64, error) {
	f.created = append(f.created, p)
	return uint64(len(f.created)), f.err
}

func (f *fakeDaemon) CloseWindow(id uint64) error {
	f.closed = append(f.closed, id)
	return f.err
}

func (f *fakeDaemon) Focus(id uint64) error {
	f.focused = append(f.focused, id)
	return f.err
}

func (f *fakeDaemon) CycleFocus() (uint64, bool, error) {
	return 7, true, f.err
}

func (f *fakeDaemon) SwitchDesktop(direction string) (int, error) {
	if direction == "next" {
		f.active++
	} else if f.active > 0 {
		f.active--
	}
	return f.active, f.err
}

func (f *fakeDaemon) SwitchTo(index int) (int, error) {
	f.active = index
	return index, f.err
}

func (f *fakeDaemon) Launch(app string, _ []string) (uint64, error) {
	f.launched = append(f.launched, app)
	return 42, f.err
}

func (f *fakeDaemon) SaveSession() error {
	f.saves++
	return f.err
}

func intPtr(v int) *int { return &v }

func TestListWindows_FiltersByDesktop(t *testing.T) {
	d := &fakeDaemon{windows: ipc.WindowsData{
		Windows: []ipc.WindowInfo{
			{ID: 1, Title: "a", Desktop: 0},
			{ID: 2, Title: "b", Desktop: 1, Focused: true},
		},
		Desktops: []ipc.DesktopInfo{{Index: 0}, {Index: 1, Active: true}},
	}}
	s := NewServer(d, nil)

	_, out, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{})
	if err != nil {
		t.Fatalf("handleListWindows: %v", err)
	}
	if len(out.Windows) != 2 || out.ActiveDesktop != 1 || out.DesktopCount != 2 {
		t.Fatalf("unexpected output %+v", out)
	}

	_, out, _ = s.handleListWindows(context.Background(), nil, ListWindowsInput{Desktop: intPtr(1)})
	if len(out.Windows) != 1 || out.Windows[0].ID != 2 || !out.Windows[0].Focused {
		t.Fatalf("unexpected filtered output %+v", out)
	}
}

func TestCreateWindow_Geometry(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)

	if _, _, err := s.handleCreateWindow(context.Background(), nil, CreateWindowInput{Title: "centered"}); err != nil {
		t.Fatalf("centered: %v", err)
	}
	if _, _, err := s.handleCreateWindow(context.Background(), nil, CreateWindowInput{
		Title: "placed", X: intPtr(10), Y: intPtr(20), Width: intPtr(300), Height: intPtr(200),
	}); err != nil {
		t.Fatalf("placed: %v", err)
	}
	if _, _, err := s.handleCreateWindow(context.Background(), nil, CreateWindowInput{X: intPtr(10)}); err == nil {
		t.Fatalf("expected error for a position without a size")
	}

	if len(d.created) != 2 {
		t.Fatalf("expected 2 windows created, got %d", len(d.created))
	}
	if !d.created[0].Centered {
		t.Fatalf("expected first window centered")
	}
	if p := d.created[1]; p.Centered || p.X != 10 || p.Y != 20 || p.Width != 300 || p.Height != 200 {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestSwitchDesktop(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)

	_, out, err := s.handleSwitchDesktop(context.Background(), nil, SwitchDesktopInput{Direction: "next"})
	if err != nil || out.ActiveDesktop != 1 {
		t.Fatalf("next: %+v %v", out, err)
	}
	_, out, err = s.handleSwitchDesktop(context.Background(), nil, SwitchDesktopInput{Index: intPtr(3), Direction: "previous"})
	if err != nil || out.ActiveDesktop != 3 {
		t.Fatalf("index should win over direction: %+v %v", out, err)
	}
	if _, _, err := s.handleSwitchDesktop(context.Background(), nil, SwitchDesktopInput{Direction: "up"}); err == nil {
		t.Fatalf("expected error for a bad direction")
	}
}

func TestWindowTools_ForwardToDaemon(t *testing.T) {
	d := &fakeDaemon{}
	s := NewServer(d, nil)
	ctx := context.Background()

	if _, out, err := s.handleCloseWindow(ctx, nil, WindowInput{ID: 3}); err != nil || !out.OK {
		t.Fatalf("close: %+v %v", out, err)
	}
	if _, out, err := s.handleFocusWindow(ctx, nil, WindowInput{ID: 4}); err != nil || !out.OK {
		t.Fatalf("focus: %+v %v", out, err)
	}
	if _, out, err := s.handleCycleFocus(ctx, nil, CycleFocusInput{}); err != nil || out.ID != 7 || !out.Changed {
		t.Fatalf("cycle: %+v %v", out, err)
	}
	if _, out, err := s.handleLaunchApp(ctx, nil, LaunchAppInput{App: "terminal"}); err != nil || out.ID != 42 {
		t.Fatalf("launch: %+v %v", out, err)
	}
	if _, _, err := s.handleLaunchApp(ctx, nil, LaunchAppInput{}); err == nil {
		t.Fatalf("expected error for an empty app")
	}
	if _, _, err := s.handleSaveSession(ctx, nil, SaveSessionInput{}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(d.closed) != 1 || d.closed[0] != 3 || len(d.focused) != 1 || d.focused[0] != 4 {
		t.Fatalf("unexpected calls closed=%v focused=%v", d.closed, d.focused)
	}
	if len(d.launched) != 1 || d.saves != 1 {
		t.Fatalf("unexpected calls launched=%v saves=%d", d.launched, d.saves)
	}
}

func TestTools_PropagateDaemonErrors(t *testing.T) {
	d := &fakeDaemon{err: errors.New("failed to connect to daemon")}
	s := NewServer(d, nil)

	if _, _, err := s.handleListWindows(context.Background(), nil, ListWindowsInput{}); err == nil {
		t.Fatalf("expected list error")
	}
	if _, out, err := s.handleCloseWindow(context.Background(), nil, WindowInput{ID: 1}); err == nil || out.OK {
		t.Fatalf("expected close error, got %+v %v", out, err)
	}
}
