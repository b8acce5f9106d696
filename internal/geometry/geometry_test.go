package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestSnapToGrid(t *testing.T) {
	cases := []struct {
		v, g, want float64
	}{
		{13, 8, 16},
		{11, 8, 8},
		{0, 8, 0},
		{-5, 8, -8},
		{13, 0, 13},
		{13, -4, 13},
	}
	for _, c := range cases {
		if got := SnapToGrid(c.v, c.g); !near(got, c.want) {
			t.Errorf("SnapToGrid(%v, %v) = %v, want %v", c.v, c.g, got, c.want)
		}
	}
}

func TestSnapIdempotent(t *testing.T) {
	for _, v := range []float64{-31, 0.4, 7, 99.5, 1234.56} {
		once := SnapToGrid(v, 8)
		if twice := SnapToGrid(once, 8); !near(once, twice) {
			t.Errorf("snap(snap(%v)) = %v, want %v", v, twice, once)
		}
	}
}

func TestGridDisabled(t *testing.T) {
	g := Grid{Size: 8}
	if got := g.Snap(13); got != 13 {
		t.Fatalf("disabled grid snapped to %v", got)
	}
	g.Enabled = true
	if got := g.SnapPosition(Position{X: 13, Y: 3}); got != (Position{X: 16, Y: 0}) {
		t.Fatalf("SnapPosition = %+v", got)
	}
	if got := g.SnapSize(Size{Width: 3, Height: 61}, MinSize); got != (Size{Width: 20, Height: 64}) {
		t.Fatalf("SnapSize = %+v", got)
	}
}

func TestClampToBounds(t *testing.T) {
	container := Size{Width: 720, Height: 405}
	got := ClampToBounds(Position{X: 700, Y: -10}, Size{Width: 100, Height: 100}, container)
	if got != (Position{X: 620, Y: 0}) {
		t.Fatalf("clamp = %+v", got)
	}
	// element wider than the container pins to the origin
	got = ClampToBounds(Position{X: 50, Y: 50}, Size{Width: 800, Height: 50}, container)
	if got != (Position{X: 0, Y: 50}) {
		t.Fatalf("oversized clamp = %+v", got)
	}
}

func TestComputeResizeEdges(t *testing.T) {
	size := Size{Width: 100, Height: 50}
	pos := Position{X: 10, Y: 10}

	b := ComputeResize(East, size, pos, Position{X: 30, Y: 99}, ResizeOptions{})
	if b.Size != (Size{Width: 130, Height: 50}) || b.Position != pos {
		t.Fatalf("east: %+v", b)
	}

	b = ComputeResize(NorthWest, size, pos, Position{X: 10, Y: 10}, ResizeOptions{})
	if b.Size != (Size{Width: 90, Height: 40}) || b.Position != (Position{X: 20, Y: 20}) {
		t.Fatalf("north-west: %+v", b)
	}
	// opposite corner stays fixed
	if !near(b.Position.X+b.Size.Width, 110) || !near(b.Position.Y+b.Size.Height, 60) {
		t.Fatalf("north-west moved anchor: %+v", b)
	}
}

func TestComputeResizeMinSize(t *testing.T) {
	b := ComputeResize(SouthEast, Size{Width: 100, Height: 50}, Position{}, Position{X: -95, Y: -1000}, ResizeOptions{})
	if b.Size != (Size{Width: 20, Height: 20}) {
		t.Fatalf("floor: %+v", b.Size)
	}
	b = ComputeResize(West, Size{Width: 100, Height: 50}, Position{X: 10}, Position{X: 500}, ResizeOptions{})
	if b.Size.Width != 20 || !near(b.Position.X, 90) {
		t.Fatalf("west floor: %+v", b)
	}
}

func TestComputeResizeAspectLock(t *testing.T) {
	size := Size{Width: 200, Height: 100}
	opts := ResizeOptions{PreserveAspectRatio: true, AspectRatio: size.AspectRatio()}

	b := ComputeResize(SouthEast, size, Position{}, Position{X: 100, Y: 10}, opts)
	if !near(b.Size.Width/b.Size.Height, 2) || !near(b.Size.Width, 300) {
		t.Fatalf("corner lock: %+v", b.Size)
	}

	b = ComputeResize(East, size, Position{X: 0, Y: 100}, Position{X: 100}, opts)
	if !near(b.Size.Height, 150) || !near(b.Position.Y, 75) {
		t.Fatalf("edge lock: %+v", b)
	}

	b = ComputeResize(NorthWest, size, Position{}, Position{X: 1000, Y: 1000}, opts)
	if b.Size.Width < MinSize || b.Size.Height < MinSize || !near(b.Size.Width/b.Size.Height, 2) {
		t.Fatalf("lock floor: %+v", b.Size)
	}
}

func TestComputeResizeDegenerateRatio(t *testing.T) {
	opts := ResizeOptions{PreserveAspectRatio: true, AspectRatio: math.Inf(1)}
	b := ComputeResize(East, Size{Width: 100, Height: 50}, Position{}, Position{X: 20}, opts)
	if b.Size != (Size{Width: 120, Height: 50}) {
		t.Fatalf("degenerate ratio should disable lock: %+v", b.Size)
	}
}

func TestComputeRotation(t *testing.T) {
	c := Position{X: 0, Y: 0}
	got := ComputeRotation(c, Position{X: 10, Y: 0}, Position{X: 0, Y: 10}, 0, 0)
	if !near(got, 90) {
		t.Fatalf("quarter turn = %v", got)
	}
	got = ComputeRotation(c, Position{X: 10, Y: 0}, Position{X: 0, Y: -10}, 0, 0)
	if !near(got, 270) {
		t.Fatalf("negative sweep = %v", got)
	}
	got = ComputeRotation(c, Position{X: 10, Y: 0}, Position{X: 10, Y: 2.2}, 0, 15)
	if got != 15 {
		t.Fatalf("snapped = %v", got)
	}
	if got := ComputeRotation(c, Position{X: 1}, Position{X: 1}, 350, 15); got != 345 {
		t.Fatalf("snap of total = %v", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	for in, want := range map[float64]float64{-90: 270, 360: 0, 725: 5, 0: 0, -720: 0} {
		if got := NormalizeAngle(in); !near(got, want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestScaleFactor(t *testing.T) {
	if f := ScaleFactor(Size{100, 50}, Size{200, 75}); !near(f, 1.5) {
		t.Fatalf("factor = %v", f)
	}
	if f := ScaleFactor(Size{0, 50}, Size{200, 75}); f != 1 {
		t.Fatalf("degenerate factor = %v", f)
	}
	if ShouldRescale(1.04) || !ShouldRescale(1.06) || !ShouldRescale(0.9) {
		t.Fatal("threshold misapplied")
	}
	if got := ScaleFontSize(24, 2); got != 48 {
		t.Fatalf("font = %v", got)
	}
	if got := ScaleFontSize(10, 0.3); got != MinFontSize {
		t.Fatalf("font floor = %v", got)
	}
}

func TestBoxTransformInverse(t *testing.T) {
	b := Box{Position: Position{X: 100, Y: 50}, Size: Size{Width: 80, Height: 40}}
	m := BoxTransform(b, 90)
	// centre is a fixed point of the rotation
	c := m.Apply(Position{X: 40, Y: 20})
	if !near(c.X, 140) || !near(c.Y, 70) {
		t.Fatalf("centre moved: %+v", c)
	}
	back := m.Invert().Apply(m.Apply(Position{X: 3, Y: 7}))
	if !near(back.X, 3) || !near(back.Y, 7) {
		t.Fatalf("inverse round trip: %+v", back)
	}
	bounds := m.Bounds(Rect{Width: 80, Height: 40})
	if !near(bounds.Width, 40) || !near(bounds.Height, 80) {
		t.Fatalf("rotated bounds: %+v", bounds)
	}
}
