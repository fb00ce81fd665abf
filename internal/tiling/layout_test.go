package tiling

import "testing"

var testScreen = Screen{Width: 1024, Height: 768, TaskbarHeight: 40}

func TestSnap_LeftEdgeTakesLeftHalfOfUsableArea(t *testing.T) {
	got, edge := Snap(Rect{X: 5, Y: 300, Width: 400, Height: 300}, testScreen, 10)
	if edge != EdgeLeft {
		t.Fatalf("expected left edge, got %s", edge)
	}
	want := Rect{X: 0, Y: 0, Width: 512, Height: 728}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSnap_RightEdgeUsesWindowRightSide(t *testing.T) {
	got, edge := Snap(Rect{X: 620, Y: 300, Width: 400, Height: 300}, testScreen, 10)
	if edge != EdgeRight {
		t.Fatalf("expected right edge, got %s", edge)
	}
	want := Rect{X: 512, Y: 0, Width: 512, Height: 728}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSnap_TopEdgeTakesTopHalf(t *testing.T) {
	got, edge := Snap(Rect{X: 300, Y: 3, Width: 400, Height: 300}, testScreen, 10)
	if edge != EdgeTop {
		t.Fatalf("expected top edge, got %s", edge)
	}
	want := Rect{X: 0, Y: 0, Width: 1024, Height: 364}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSnap_LeftWinsOverTop(t *testing.T) {
	_, edge := Snap(Rect{X: 2, Y: 2, Width: 400, Height: 300}, testScreen, 10)
	if edge != EdgeLeft {
		t.Fatalf("expected left edge to take priority, got %s", edge)
	}
}

func TestSnap_NoEdgeLeavesRectUntouched(t *testing.T) {
	in := Rect{X: 300, Y: 200, Width: 400, Height: 300}
	got, edge := Snap(in, testScreen, 10)
	if edge != EdgeNone {
		t.Fatalf("expected no edge, got %s", edge)
	}
	if got != in {
		t.Fatalf("expected %+v, got %+v", in, got)
	}
}

func TestSnap_ThresholdBoundaryIsInclusive(t *testing.T) {
	_, edge := Snap(Rect{X: 10, Y: 200, Width: 400, Height: 300}, testScreen, 10)
	if edge != EdgeLeft {
		t.Fatalf("expected x == threshold to snap left, got %s", edge)
	}
	_, edge = Snap(Rect{X: 11, Y: 200, Width: 400, Height: 300}, testScreen, 10)
	if edge != EdgeNone {
		t.Fatalf("expected x == threshold+1 not to snap, got %s", edge)
	}
}

func TestClamp_RaisesUndersizedDimensions(t *testing.T) {
	got := Clamp(Rect{X: 7, Y: 9, Width: 50, Height: 400}, Size{Width: 200, Height: 150})
	if got.Width != 200 || got.Height != 400 {
		t.Fatalf("expected 200x400, got %dx%d", got.Width, got.Height)
	}
	if got.X != 7 || got.Y != 9 {
		t.Fatalf("expected position to be preserved, got %d,%d", got.X, got.Y)
	}
}

func TestResizeFromDelta_ClampsAtMinimum(t *testing.T) {
	start := Rect{X: 100, Y: 100, Width: 400, Height: 300}
	got := ResizeFromDelta(start, -350, -50, Size{Width: 200, Height: 150})
	if got.Width != 200 || got.Height != 250 {
		t.Fatalf("expected 200x250, got %dx%d", got.Width, got.Height)
	}
}

func TestMaximized_ExcludesTaskbar(t *testing.T) {
	got := Maximized(testScreen)
	want := Rect{X: 0, Y: 0, Width: 1024, Height: 728}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestCentered_DefaultWindow(t *testing.T) {
	got := Centered(Screen{Width: 1024, Height: 768}, 400, 300)
	if got.X != 312 || got.Y != 234 {
		t.Fatalf("expected 312,234, got %d,%d", got.X, got.Y)
	}
}

func TestCalculateGrid(t *testing.T) {
	cases := []struct {
		n, rows, cols int
	}{
		{0, 0, 0},
		{1, 1, 1},
		{2, 1, 2},
		{3, 2, 2},
		{5, 2, 3},
		{9, 3, 3},
	}
	for _, tc := range cases {
		rows, cols := CalculateGrid(tc.n)
		if rows != tc.rows || cols != tc.cols {
			t.Fatalf("n=%d: expected %dx%d, got %dx%d", tc.n, tc.rows, tc.cols, rows, cols)
		}
	}
}

func TestCalculatePositions_LastRowExpands(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 310, Height: 210}
	positions := CalculatePositions(3, area, 10)
	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(positions))
	}

	// 2x2 grid: cellWidth=(310-30)/2=140, cellHeight=(210-30)/2=90.
	if positions[0].Width != 140 || positions[0].Height != 90 {
		t.Fatalf("expected first cell 140x90, got %dx%d", positions[0].Width, positions[0].Height)
	}
	// Single window in the last row spans (310-20)/1=290.
	if positions[2].Width != 290 {
		t.Fatalf("expected last row width 290, got %d", positions[2].Width)
	}
	if positions[2].Y != 110 {
		t.Fatalf("expected last row y=110, got %d", positions[2].Y)
	}
}

func TestApplyRegion_CustomClampsToMinimumSize(t *testing.T) {
	monitor := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	region := Region{
		Type:          RegionCustom,
		XPercent:      0,
		YPercent:      0,
		WidthPercent:  1,
		HeightPercent: 1,
	}

	adjusted := ApplyRegion(monitor, region)
	if adjusted.Width != 1 || adjusted.Height != 1 {
		t.Fatalf("expected 1x1, got %dx%d", adjusted.Width, adjusted.Height)
	}
}
