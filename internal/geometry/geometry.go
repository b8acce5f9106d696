// Package geometry holds the pure math behind slide editing: grid snapping,
// boundary clamping, directional resize, rotation and proportional scaling.
package geometry

import "math"

// MinSize is the smallest width or height any element may be resized to.
const MinSize = 20.0

// Position is a point in document coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p offset by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the vector from o to p.
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Size is a width/height pair in document units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AspectRatio returns width/height, or 0 when height is not positive.
func (s Size) AspectRatio() float64 {
	if s.Height <= 0 {
		return 0
	}
	return s.Width / s.Height
}

// Box is a positioned size, the unit a resize produces.
type Box struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Center returns the midpoint of the box.
func (b Box) Center() Position {
	return Position{X: b.Position.X + b.Size.Width/2, Y: b.Position.Y + b.Size.Height/2}
}

// Rect returns the box as an axis-aligned rectangle.
func (b Box) Rect() Rect {
	return Rect{X: b.Position.X, Y: b.Position.Y, Width: b.Size.Width, Height: b.Size.Height}
}

// Rect represents an axis-aligned bounding box.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains checks if a point is inside the rect.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// IsEmpty checks if the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Center returns the midpoint of the rect.
func (r Rect) Center() Position {
	return Position{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ClampToBounds keeps an element of size elem fully inside a container of
// size container. An axis where the element is larger than the container
// pins to 0.
func ClampToBounds(pos Position, elem, container Size) Position {
	return Position{
		X: clampAxis(pos.X, container.Width-elem.Width),
		Y: clampAxis(pos.Y, container.Height-elem.Height),
	}
}

func clampAxis(v, hi float64) float64 {
	if hi < 0 {
		hi = 0
	}
	return math.Max(0, math.Min(hi, v))
}
