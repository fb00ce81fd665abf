package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileStore keeps the snapshot in a single JSON file. Writes go to a temp
// file in the same directory which is then renamed over the old snapshot, so
// a failed save never leaves a truncated file behind.
type FileStore struct {
	path      string
	sessionID string
	logger    *slog.Logger
	now       func() time.Time
}

// NewFileStore creates a store at path. A nil logger discards output.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileStore{
		path:      path,
		sessionID: uuid.NewString(),
		logger:    logger,
		now:       time.Now,
	}
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return s.path
}

// SessionID identifies this process's snapshots.
func (s *FileStore) SessionID() string {
	return s.sessionID
}

func (s *FileStore) Save(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	data, err := Encode(Snapshot{
		SessionID: s.sessionID,
		SavedAt:   s.now().UTC(),
		Windows:   entries,
	})
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	if err := writeAtomic(s.path, data); err != nil {
		s.logger.Error("session: failed to save", "path", s.path, "error", err)
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}

	s.logger.Debug("session: saved", "path", s.path, "windows", len(entries))
	return nil
}

func (s *FileStore) Load(ctx context.Context) []Entry {
	if ctx.Err() != nil {
		return []Entry{}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("session: no snapshot", "path", s.path)
		} else {
			s.logger.Warn("session: failed to read snapshot", "path", s.path, "error", err)
		}
		return []Entry{}
	}

	snap, err := Decode(data)
	if err != nil {
		s.logger.Warn("session: ignoring corrupt snapshot", "path", s.path, "error", err)
		return []Entry{}
	}
	return snap.Windows
}

func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
