package viewport

import (
	"math"
	"testing"

	"github.com/inamate/slides/internal/geometry"
)

var slide = geometry.Size{Width: 720, Height: 405}

func TestZoomInStepsThroughPresets(t *testing.T) {
	v := New(slide)
	want := []int{115, 125, 150, 175, 200, 250, 300, 300}
	for _, w := range want {
		v.ZoomIn()
		if v.Percent() != w {
			t.Fatalf("ZoomIn -> %d%%, want %d%%", v.Percent(), w)
		}
	}
	if v.Scale() > MaxScale {
		t.Fatalf("scale %v above max", v.Scale())
	}
}

func TestZoomOutStepsThroughPresets(t *testing.T) {
	v := New(slide)
	for _, w := range []int{75, 50, 25} {
		v.ZoomOut()
		if v.Percent() != w {
			t.Fatalf("ZoomOut -> %d%%, want %d%%", v.Percent(), w)
		}
	}
	for i := 0; i < 50; i++ {
		v.ZoomOut()
	}
	if math.Abs(v.Scale()-MinScale) > 1e-9 {
		t.Fatalf("scale bottomed out at %v", v.Scale())
	}
}

func TestZoomInFromOffPresetLevel(t *testing.T) {
	v := New(slide)
	v.ZoomToPreset(110)
	v.ZoomIn()
	if v.Percent() != 115 {
		t.Fatalf("got %d%%", v.Percent())
	}
}

func TestFitToView(t *testing.T) {
	v := New(slide)
	v.FitToView(1480, 850)
	if math.Abs(v.Scale()-2) > 1e-9 {
		t.Fatalf("fit scale = %v, want 2", v.Scale())
	}

	v.ZoomToPreset(150)
	v.FitToView(0, 0)
	if v.Scale() != 1.5 {
		t.Fatalf("zero container changed scale to %v", v.Scale())
	}
	v.FitToView(30, 30)
	if v.Scale() != 1.5 {
		t.Fatalf("container smaller than padding changed scale to %v", v.Scale())
	}
}

func TestResetAndPreset(t *testing.T) {
	v := New(slide)
	v.ZoomToPreset(250)
	if v.Scale() != 2.5 {
		t.Fatalf("preset scale = %v", v.Scale())
	}
	v.ZoomToPreset(-5)
	if v.Scale() != 2.5 {
		t.Fatal("negative preset should be ignored")
	}
	v.Reset()
	if v.Scale() != 1 {
		t.Fatal("reset")
	}
}

func TestWheelClamp(t *testing.T) {
	v := New(slide)
	for i := 0; i < 200; i++ {
		v.Wheel(-1)
	}
	if v.Scale() != MaxWheelScale {
		t.Fatalf("wheel max = %v", v.Scale())
	}
	for i := 0; i < 200; i++ {
		v.Wheel(1)
	}
	if v.Scale() != MinWheelScale {
		t.Fatalf("wheel min = %v", v.Scale())
	}
}

func TestCoordinateConversion(t *testing.T) {
	v := New(slide)
	v.ZoomToPreset(200)
	v.SetOrigin(geometry.Position{X: 100, Y: 50})

	doc := v.ScreenToDocument(geometry.Position{X: 300, Y: 250})
	if doc != (geometry.Position{X: 100, Y: 100}) {
		t.Fatalf("ScreenToDocument = %+v", doc)
	}
	if back := v.DocumentToScreen(doc); back != (geometry.Position{X: 300, Y: 250}) {
		t.Fatalf("DocumentToScreen = %+v", back)
	}
	if d := v.ScreenDeltaToDocument(geometry.Position{X: 30, Y: -10}); d != (geometry.Position{X: 15, Y: -5}) {
		t.Fatalf("delta = %+v", d)
	}
	if p := v.Matrix().Apply(doc); p != (geometry.Position{X: 300, Y: 250}) {
		t.Fatalf("matrix = %+v", p)
	}
}
