package geometry

import (
	"math"
	"strings"
)

// ResizeDirection names the handle being dragged: one of the four edges or
// one of the four corners.
type ResizeDirection string

const (
	North     ResizeDirection = "n"
	South     ResizeDirection = "s"
	East      ResizeDirection = "e"
	West      ResizeDirection = "w"
	NorthEast ResizeDirection = "ne"
	NorthWest ResizeDirection = "nw"
	SouthEast ResizeDirection = "se"
	SouthWest ResizeDirection = "sw"
)

// Valid reports whether d is one of the eight handle directions.
func (d ResizeDirection) Valid() bool {
	switch d {
	case North, South, East, West, NorthEast, NorthWest, SouthEast, SouthWest:
		return true
	}
	return false
}

// Has reports whether the direction moves the given edge.
func (d ResizeDirection) Has(edge ResizeDirection) bool {
	return strings.Contains(string(d), string(edge))
}

func (d ResizeDirection) horizontal() bool { return d.Has(East) || d.Has(West) }
func (d ResizeDirection) vertical() bool   { return d.Has(North) || d.Has(South) }

// ResizeOptions tunes ComputeResize.
type ResizeOptions struct {
	PreserveAspectRatio bool
	// AspectRatio is width/height captured at gesture start.
	AspectRatio float64
	// MinSize defaults to the package MinSize when zero.
	MinSize float64
}

func (o ResizeOptions) locked() bool {
	r := o.AspectRatio
	return o.PreserveAspectRatio && r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// ComputeResize returns the new box for a handle drag of delta measured in
// document units from the gesture start.
//
// East and south edges only grow the size. West and north edges also move the
// position so the opposite edge stays put. With the aspect lock, a corner drag
// lets the axis with the larger relative change drive the other one, while a
// single edge drag grows the perpendicular axis evenly about the centre.
func ComputeResize(dir ResizeDirection, size Size, pos Position, delta Position, opts ResizeOptions) Box {
	minSize := opts.MinSize
	if minSize <= 0 {
		minSize = MinSize
	}

	w, h := size.Width, size.Height
	if dir.Has(East) {
		w += delta.X
	}
	if dir.Has(West) {
		w -= delta.X
	}
	if dir.Has(South) {
		h += delta.Y
	}
	if dir.Has(North) {
		h -= delta.Y
	}

	if opts.locked() {
		ratio := opts.AspectRatio
		switch {
		case dir.horizontal() && dir.vertical():
			if relativeChange(w, size.Width) >= relativeChange(h, size.Height) {
				h = w / ratio
			} else {
				w = h * ratio
			}
		case dir.horizontal():
			h = w / ratio
		case dir.vertical():
			w = h * ratio
		}
		if w < minSize {
			w = minSize
			h = w / ratio
		}
		if h < minSize {
			h = minSize
			w = h * ratio
		}
	} else {
		w = math.Max(minSize, w)
		h = math.Max(minSize, h)
	}

	x := pos.X
	switch {
	case dir.Has(West):
		x = pos.X + size.Width - w
	case !dir.horizontal():
		x = pos.X + (size.Width-w)/2
	}
	y := pos.Y
	switch {
	case dir.Has(North):
		y = pos.Y + size.Height - h
	case !dir.vertical():
		y = pos.Y + (size.Height-h)/2
	}

	return Box{Position: Position{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

func relativeChange(now, was float64) float64 {
	if was <= 0 {
		return math.Abs(now - was)
	}
	return math.Abs(now/was - 1)
}
