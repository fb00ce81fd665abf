// Package session persists the set of open windows so the shell can rebuild
// placeholder windows after a restart.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is the restorable part of one window: its title, geometry and the
// desktop it lived on. Content handles and stacking order are not persisted.
type Entry struct {
	Title        string `json:"title"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	DesktopIndex int    `json:"desktop_index"`
}

// Snapshot is the on-disk document.
type Snapshot struct {
	SessionID string    `json:"session_id,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
	Windows   []Entry   `json:"windows"`

	// Files written by older shells keyed the list as open_windows.
	Legacy []Entry `json:"open_windows,omitempty"`
}

// Store saves and loads snapshots.
//
// Load never fails: a missing or unreadable snapshot is an empty session.
type Store interface {
	Save(ctx context.Context, entries []Entry) error
	Load(ctx context.Context) []Entry
}

// PersistenceError reports a failed save or load.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("session %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("session %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Encode renders a snapshot as indented JSON.
func Encode(s Snapshot) ([]byte, error) {
	if s.Windows == nil {
		s.Windows = []Entry{}
	}
	s.Legacy = nil
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a snapshot document, accepting the legacy open_windows key.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse session: %w", err)
	}
	if len(s.Windows) == 0 && len(s.Legacy) > 0 {
		s.Windows = s.Legacy
	}
	s.Legacy = nil
	if s.Windows == nil {
		s.Windows = []Entry{}
	}
	return s, nil
}

// DefaultPath returns ~/.berke0s/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".berke0s", "session.json"), nil
}
