package wm

import (
	"context"

	"github.com/BreDEVs/kontrol-sub000/internal/session"
	"github.com/BreDEVs/kontrol-sub000/internal/tiling"
)

// Surface is the display side of the window manager. Calls are best effort:
// the manager logs failures and keeps its own state authoritative.
type Surface interface {
	Place(h ContentHandle, r tiling.Rect) error
	Show(h ContentHandle) error
	Hide(h ContentHandle) error
	Raise(h ContentHandle) error
	Close(h ContentHandle) error
}

// Launcher starts an application and returns the surface it rendered into.
type Launcher interface {
	Launch(ctx context.Context, appID string, args []string) (ContentHandle, string, error)
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(summary, body string) error
}

// SessionStore is satisfied by session.FileStore and session.PostgresStore.
type SessionStore = session.Store

type nopSurface struct{}

func (nopSurface) Place(ContentHandle, tiling.Rect) error { return nil }
func (nopSurface) Show(ContentHandle) error               { return nil }
func (nopSurface) Hide(ContentHandle) error               { return nil }
func (nopSurface) Raise(ContentHandle) error              { return nil }
func (nopSurface) Close(ContentHandle) error              { return nil }

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) error { return nil }

type memorySessions struct {
	entries []session.Entry
}

func (m *memorySessions) Save(_ context.Context, entries []session.Entry) error {
	m.entries = append([]session.Entry(nil), entries...)
	return nil
}

func (m *memorySessions) Load(context.Context) []session.Entry {
	return append([]session.Entry{}, m.entries...)
}
