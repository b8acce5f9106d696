package geometry

import "math"

// SnapToGrid rounds v to the nearest multiple of gridSize. A non-positive
// grid size leaves v untouched.
func SnapToGrid(v, gridSize float64) float64 {
	if gridSize <= 0 {
		return v
	}
	return math.Round(v/gridSize) * gridSize
}

// Grid is the canvas snapping grid.
type Grid struct {
	Size    float64 `json:"size"`
	Enabled bool    `json:"enabled"`
}

// Active reports whether values will actually be snapped.
func (g Grid) Active() bool {
	return g.Enabled && g.Size > 0
}

// Snap snaps a single value when the grid is active.
func (g Grid) Snap(v float64) float64 {
	if !g.Active() {
		return v
	}
	return SnapToGrid(v, g.Size)
}

// SnapPosition snaps both axes independently.
func (g Grid) SnapPosition(p Position) Position {
	return Position{X: g.Snap(p.X), Y: g.Snap(p.Y)}
}

// SnapSize snaps both dimensions and re-applies the minimum size floor.
func (g Grid) SnapSize(s Size, minSize float64) Size {
	return Size{
		Width:  math.Max(minSize, g.Snap(s.Width)),
		Height: math.Max(minSize, g.Snap(s.Height)),
	}
}
