package platform

import (
	"github.com/BreDEVs/kontrol-sub000/internal/tiling"
	"github.com/BreDEVs/kontrol-sub000/internal/wm"
)

// SurfaceAdapter exposes a Backend as the window manager's display surface.
// Content handles are backend window ids.
type SurfaceAdapter struct {
	backend Backend
	opacity float64
}

var _ wm.Surface = (*SurfaceAdapter)(nil)

// NewSurfaceAdapter applies opacity to every window it shows. An opacity of
// 1 or more leaves windows untouched.
func NewSurfaceAdapter(b Backend, opacity float64) *SurfaceAdapter {
	return &SurfaceAdapter{backend: b, opacity: opacity}
}

func (s *SurfaceAdapter) Place(h wm.ContentHandle, r tiling.Rect) error {
	return s.backend.MoveResize(WindowID(h), Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
}

func (s *SurfaceAdapter) Show(h wm.ContentHandle) error {
	if err := s.backend.Show(WindowID(h)); err != nil {
		return err
	}
	if s.opacity > 0 && s.opacity < 1 {
		return s.backend.SetOpacity(WindowID(h), s.opacity)
	}
	return nil
}

func (s *SurfaceAdapter) Hide(h wm.ContentHandle) error {
	return s.backend.Hide(WindowID(h))
}

func (s *SurfaceAdapter) Raise(h wm.ContentHandle) error {
	return s.backend.Raise(WindowID(h))
}

func (s *SurfaceAdapter) Close(h wm.ContentHandle) error {
	return s.backend.Close(WindowID(h))
}
