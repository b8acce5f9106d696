// Package viewport models the editor zoom level and the conversion between
// screen pixels and document units.
package viewport

import (
	"math"

	"github.com/inamate/slides/internal/geometry"
)

const (
	MinScale = 0.1
	MaxScale = 3.0

	// Wheel zoom has its own narrower range.
	MinWheelScale = 0.25
	MaxWheelScale = 2.5

	// FitPadding is the space reserved around the slide by FitToView.
	FitPadding = 40.0

	stepIn  = 1.1
	stepOut = 0.9
)

// Presets are the zoom stops in percent, ascending.
var Presets = []int{25, 50, 75, 100, 115, 125, 150, 175, 200, 250, 300}

// Viewport holds the zoom factor and the screen position of the slide origin.
// The zero value is not ready; use New.
type Viewport struct {
	scale     float64
	origin    geometry.Position
	reference geometry.Size
}

// New returns a viewport at 100% for a slide of the given reference size.
func New(reference geometry.Size) *Viewport {
	return &Viewport{scale: 1, reference: reference}
}

func (v *Viewport) Scale() float64 { return v.scale }

// Percent is the scale rounded to a whole percentage.
func (v *Viewport) Percent() int { return int(math.Round(v.scale * 100)) }

func (v *Viewport) Origin() geometry.Position { return v.origin }

// SetOrigin records where the slide's top-left corner sits on screen.
func (v *Viewport) SetOrigin(p geometry.Position) { v.origin = p }

// ZoomIn moves to the next preset above the current level, or grows by 10%
// past the last preset.
func (v *Viewport) ZoomIn() {
	cur := v.Percent()
	for _, p := range Presets {
		if p > cur {
			v.scale = float64(p) / 100
			return
		}
	}
	v.scale = math.Min(MaxScale, v.scale*stepIn)
}

// ZoomOut moves to the previous preset below the current level, or shrinks by
// 10% below the first preset.
func (v *Viewport) ZoomOut() {
	cur := v.Percent()
	for i := len(Presets) - 1; i >= 0; i-- {
		if Presets[i] < cur {
			v.scale = float64(Presets[i]) / 100
			return
		}
	}
	v.scale = math.Max(MinScale, v.scale*stepOut)
}

// ZoomToPreset sets the scale to percent/100. Non-positive values are ignored.
func (v *Viewport) ZoomToPreset(percent float64) {
	if percent <= 0 || math.IsNaN(percent) {
		return
	}
	v.scale = clamp(percent/100, MinScale, MaxScale)
}

// Reset returns to 100%.
func (v *Viewport) Reset() { v.scale = 1 }

// FitToView scales the slide to fit a container with padding. Zero or
// degenerate dimensions leave the scale untouched.
func (v *Viewport) FitToView(containerW, containerH float64) {
	if containerW <= 0 || containerH <= 0 || v.reference.Width <= 0 || v.reference.Height <= 0 {
		return
	}
	s := math.Min((containerW-FitPadding)/v.reference.Width, (containerH-FitPadding)/v.reference.Height)
	if s <= 0 || math.IsNaN(s) {
		return
	}
	v.scale = clamp(s, MinScale, MaxScale)
}

// Wheel applies a ctrl+wheel zoom step: scrolling down zooms out by 5%,
// scrolling up zooms in by 5%.
func (v *Viewport) Wheel(deltaY float64) {
	if deltaY == 0 {
		return
	}
	factor := 1.05
	if deltaY > 0 {
		factor = 0.95
	}
	v.scale = clamp(v.scale*factor, MinWheelScale, MaxWheelScale)
}

// ScreenToDocument converts a screen point to document coordinates.
func (v *Viewport) ScreenToDocument(p geometry.Position) geometry.Position {
	return geometry.Position{X: (p.X - v.origin.X) / v.scale, Y: (p.Y - v.origin.Y) / v.scale}
}

// ScreenDeltaToDocument converts a pointer movement to document units.
func (v *Viewport) ScreenDeltaToDocument(d geometry.Position) geometry.Position {
	return geometry.Position{X: d.X / v.scale, Y: d.Y / v.scale}
}

// DocumentToScreen converts a document point to screen coordinates.
func (v *Viewport) DocumentToScreen(p geometry.Position) geometry.Position {
	return geometry.Position{X: p.X*v.scale + v.origin.X, Y: p.Y*v.scale + v.origin.Y}
}

// Matrix maps document space to screen space.
func (v *Viewport) Matrix() geometry.Matrix2D {
	return geometry.Translate(v.origin.X, v.origin.Y).Multiply(geometry.Scale(v.scale, v.scale))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
