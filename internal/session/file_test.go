package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_SaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path, nil)

	entries := []Entry{
		{Title: "Terminal", X: 100, Y: 100, Width: 400, Height: 300, DesktopIndex: 0},
		{Title: "Files", X: 50, Y: 60, Width: 200, Height: 150, DesktopIndex: 2},
	}
	if err := store.Save(context.Background(), entries); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := NewFileStore(path, nil).Load(context.Background())
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, entries[i], got[i])
		}
	}
}

func TestFileStore_WritesWindowsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path, nil)
	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"windows": []`) {
		t.Fatalf("expected empty windows array, got:\n%s", data)
	}
	if !strings.Contains(string(data), store.SessionID()) {
		t.Fatalf("expected session id in snapshot")
	}
}

func TestFileStore_MissingFileLoadsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope", "session.json"), nil)
	got := store.Load(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestFileStore_CorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"windows": [`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := NewFileStore(path, nil).Load(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected empty session, got %d entries", len(got))
	}
}

func TestFileStore_LoadsLegacyOpenWindowsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	legacy := `{"open_windows": [{"title": "Old", "x": 1, "y": 2, "width": 300, "height": 200}]}`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := NewFileStore(path, nil).Load(context.Background())
	if len(got) != 1 || got[0].Title != "Old" || got[0].DesktopIndex != 0 {
		t.Fatalf("unexpected legacy load result: %#v", got)
	}
}

func TestFileStore_FailedSaveKeepsPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	store := NewFileStore(path, nil)

	first := []Entry{{Title: "Keep", X: 1, Y: 2, Width: 300, Height: 200}}
	if err := store.Save(context.Background(), first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	// A read-only directory makes the temp file creation fail.
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	err = store.Save(context.Background(), []Entry{{Title: "Lost"}})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if perr.Op != "save" || perr.Path != path {
		t.Fatalf("unexpected error fields: %+v", perr)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("expected previous snapshot to be untouched")
	}
}

func TestFileStore_CancelledContextDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewFileStore(path, nil).Save(ctx, []Entry{{Title: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("expected no snapshot file")
	}
}

func TestOpenPostgres_RequiresDSN(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), "", nil); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}
