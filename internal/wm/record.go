package wm

import (
	"errors"
	"fmt"
	"sort"

	"github.com/BreDEVs/kontrol-sub000/internal/tiling"
)

var (
	// ErrNotFound is returned when a window id is unknown.
	ErrNotFound = errors.New("window not found")
	// ErrOutOfRange is returned for an invalid desktop index.
	ErrOutOfRange = errors.New("desktop index out of range")
)

// WindowID identifies a window for the lifetime of the process.
type WindowID uint64

// ContentHandle is the opaque surface an application hands the window
// manager. PlaceholderContent marks a window with nothing embedded.
type ContentHandle uint64

const PlaceholderContent ContentHandle = 0

// State is the display state of a window.
type State int

const (
	StateNormal State = iota
	StateMinimized
	StateMaximized
)

// String returns a string representation of the window state.
func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// WindowRecord is the window manager's view of one open window.
type WindowRecord struct {
	ID       WindowID
	Title    string
	Geometry tiling.Rect
	Desktop  int
	ZRank    uint64
	State    State
	// Restore holds the geometry to return to when leaving maximized state.
	Restore *tiling.Rect
	Content ContentHandle
	// Minimizing a maximized window remembers it here.
	wasMaximized bool
}

func (r *WindowRecord) clone() WindowRecord {
	out := *r
	if r.Restore != nil {
		g := *r.Restore
		out.Restore = &g
	}
	return out
}

// Store owns every WindowRecord. Everything else refers to windows by id.
type Store struct {
	records map[WindowID]*WindowRecord
	lastID  WindowID
	topZ    uint64
	minSize tiling.Size
}

// NewStore creates an empty store enforcing the given minimum window size.
func NewStore(minSize tiling.Size) *Store {
	return &Store{
		records: make(map[WindowID]*WindowRecord),
		minSize: floorSize(minSize),
	}
}

// MinSize returns the enforced minimum window size.
func (s *Store) MinSize() tiling.Size {
	return s.minSize
}

// SetMinSize changes the minimum for later writes. Stored geometry is
// clamped the next time it is written.
func (s *Store) SetMinSize(minSize tiling.Size) {
	s.minSize = floorSize(minSize)
}

func floorSize(sz tiling.Size) tiling.Size {
	if sz.Width < 1 {
		sz.Width = 1
	}
	if sz.Height < 1 {
		sz.Height = 1
	}
	return sz
}

// Create inserts a Normal window above every existing one.
func (s *Store) Create(title string, geometry tiling.Rect, desktop int) WindowID {
	s.lastID++
	s.topZ++
	id := s.lastID
	s.records[id] = &WindowRecord{
		ID:       id,
		Title:    title,
		Geometry: tiling.Clamp(geometry, s.minSize),
		Desktop:  desktop,
		ZRank:    s.topZ,
		State:    StateNormal,
	}
	return id
}

// Get returns a copy of the record.
func (s *Store) Get(id WindowID) (WindowRecord, error) {
	rec, err := s.lookup(id)
	if err != nil {
		return WindowRecord{}, err
	}
	return rec.clone(), nil
}

// UpdateGeometry clamps and stores a new geometry.
func (s *Store) UpdateGeometry(id WindowID, geometry tiling.Rect) error {
	rec, err := s.lookup(id)
	if err != nil {
		return err
	}
	rec.Geometry = tiling.Clamp(geometry, s.minSize)
	return nil
}

// Remove deletes a record. Removing twice reports ErrNotFound.
func (s *Store) Remove(id WindowID) error {
	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.records, id)
	return nil
}

// Raise gives the window a z-rank above every other window.
func (s *Store) Raise(id WindowID) error {
	rec, err := s.lookup(id)
	if err != nil {
		return err
	}
	if rec.ZRank == s.topZ {
		return nil
	}
	s.topZ++
	rec.ZRank = s.topZ
	return nil
}

// Len returns the number of live windows.
func (s *Store) Len() int {
	return len(s.records)
}

// All returns copies of every record ordered by id.
func (s *Store) All() []WindowRecord {
	out := make([]WindowRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) lookup(id WindowID) (*WindowRecord, error) {
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	return rec, nil
}

func (s *Store) mutate(id WindowID, fn func(*WindowRecord)) error {
	rec, err := s.lookup(id)
	if err != nil {
		return err
	}
	fn(rec)
	rec.Geometry = tiling.Clamp(rec.Geometry, s.minSize)
	return nil
}
