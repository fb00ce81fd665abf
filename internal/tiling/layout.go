package tiling

import (
	"math"
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Size is a width/height pair, used for minimum window dimensions.
type Size struct {
	Width  int
	Height int
}

// Screen describes the display area the window manager lays windows out on.
// TaskbarHeight is reserved at the bottom of the screen.
type Screen struct {
	Width         int
	Height        int
	TaskbarHeight int
}

// Usable returns the screen area not covered by the taskbar.
func (s Screen) Usable() Rect {
	h := s.Height - s.TaskbarHeight
	if h < 1 {
		h = 1
	}
	w := s.Width
	if w < 1 {
		w = 1
	}
	return Rect{X: 0, Y: 0, Width: w, Height: h}
}

// Clamp enforces the minimum window size. Position is left untouched.
func Clamp(r Rect, minSize Size) Rect {
	if r.Width < minSize.Width {
		r.Width = minSize.Width
	}
	if r.Height < minSize.Height {
		r.Height = minSize.Height
	}
	return r
}

// Edge identifies which snap rule matched a drag release.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
	EdgeTop
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	default:
		return "none"
	}
}

// DetectEdge evaluates the snap rules in fixed priority order: left, right,
// top. The right rule looks at the window's right edge.
func DetectEdge(r Rect, screen Screen, threshold int) Edge {
	if threshold < 0 {
		return EdgeNone
	}
	if r.X <= threshold {
		return EdgeLeft
	}
	if r.X+r.Width >= screen.Width-threshold {
		return EdgeRight
	}
	if r.Y <= threshold {
		return EdgeTop
	}
	return EdgeNone
}

// Snap resolves a dragged rectangle against the screen edges. When no rule
// matches the rectangle is returned verbatim.
func Snap(r Rect, screen Screen, threshold int) (Rect, Edge) {
	edge := DetectEdge(r, screen, threshold)
	usable := screen.Usable()

	switch edge {
	case EdgeLeft:
		return ApplyRegion(usable, Region{Type: RegionLeftHalf}), edge
	case EdgeRight:
		return ApplyRegion(usable, Region{Type: RegionRightHalf}), edge
	case EdgeTop:
		return ApplyRegion(usable, Region{Type: RegionTopHalf}), edge
	default:
		return r, EdgeNone
	}
}

// ResizeFromDelta computes a new size from the cursor delta relative to the
// geometry captured when the resize started.
func ResizeFromDelta(start Rect, dx, dy int, minSize Size) Rect {
	out := start
	out.Width = start.Width + dx
	out.Height = start.Height + dy
	return Clamp(out, minSize)
}

// Maximized returns the geometry of a maximized window: the whole usable area.
func Maximized(screen Screen) Rect {
	return screen.Usable()
}

// Centered places a window of the given size in the middle of the usable area.
func Centered(screen Screen, width, height int) Rect {
	usable := screen.Usable()
	x := (usable.Width - width) / 2
	y := (usable.Height - height) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}

	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))

	return rows, cols
}

// CalculatePositions computes window positions for a grid layout with gaps.
// A partially filled last row expands its windows to use the full width.
func CalculatePositions(numWindows int, area Rect, gapSize int) []Rect {
	if numWindows == 0 {
		return nil
	}

	rows, cols := CalculateGrid(numWindows)

	// (cols + 1) gaps horizontally: one before each column and one after.
	cellWidth := (area.Width - (cols+1)*gapSize) / cols
	cellHeight := (area.Height - (rows+1)*gapSize) / rows

	lastRow := rows - 1
	inLastRow := numWindows - lastRow*cols
	lastRowWidth := cellWidth
	if inLastRow > 0 && inLastRow < cols {
		lastRowWidth = (area.Width - (inLastRow+1)*gapSize) / inLastRow
	}

	positions := make([]Rect, numWindows)
	for i := 0; i < numWindows; i++ {
		row := i / cols
		col := i % cols

		width := cellWidth
		if row == lastRow {
			width = lastRowWidth
		}

		positions[i] = Rect{
			X:      area.X + gapSize + col*(width+gapSize),
			Y:      area.Y + gapSize + row*(cellHeight+gapSize),
			Width:  width,
			Height: cellHeight,
		}
	}

	return positions
}

// RegionType defines area presets used by snapping and tiling.
type RegionType string

const (
	RegionFull       RegionType = "full"
	RegionLeftHalf   RegionType = "left-half"
	RegionRightHalf  RegionType = "right-half"
	RegionTopHalf    RegionType = "top-half"
	RegionBottomHalf RegionType = "bottom-half"
	RegionCustom     RegionType = "custom"
)

// Region selects part of an area. Percentages apply to RegionCustom only.
type Region struct {
	Type          RegionType
	XPercent      int
	YPercent      int
	WidthPercent  int
	HeightPercent int
}

// ApplyRegion applies a region to an area, returning adjusted bounds
func ApplyRegion(area Rect, region Region) Rect {
	adjusted := area

	switch region.Type {
	case RegionFull:
		// No change

	case RegionLeftHalf:
		adjusted.Width = area.Width / 2

	case RegionRightHalf:
		adjusted.X = area.X + area.Width/2
		adjusted.Width = area.Width / 2

	case RegionTopHalf:
		adjusted.Height = area.Height / 2

	case RegionBottomHalf:
		adjusted.Y = area.Y + area.Height/2
		adjusted.Height = area.Height / 2

	case RegionCustom:
		adjusted.X = area.X + (area.Width * region.XPercent / 100)
		adjusted.Y = area.Y + (area.Height * region.YPercent / 100)
		adjusted.Width = area.Width * region.WidthPercent / 100
		adjusted.Height = area.Height * region.HeightPercent / 100
	}

	if adjusted.Width < 1 {
		adjusted.Width = 1
	}
	if adjusted.Height < 1 {
		adjusted.Height = 1
	}

	return adjusted
}
