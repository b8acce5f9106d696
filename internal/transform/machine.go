// Package transform implements the per-element gesture state machine that
// turns pointer and keyboard events into document mutations.
package transform

import (
	"strings"
	"time"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
)

type State int

const (
	Idle State = iota
	Dragging
	Resizing
	Rotating
	EditingText
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Rotating:
		return "rotating"
	case EditingText:
		return "editing"
	}
	return "unknown"
}

const (
	DefaultThrottle = 16 * time.Millisecond

	DefaultTextContent  = "Text"
	DefaultShapeContent = "Add text"
)

// Projector converts screen positions to document coordinates.
type Projector interface {
	ScreenToDocument(p geometry.Position) geometry.Position
}

// Env is everything outside the gesture that a transition depends on.
type Env struct {
	// Element is the element's latest snapshot.
	Element      document.Element
	View         Projector
	Grid         geometry.Grid
	Container    geometry.Size
	Throttle     time.Duration
	RotationSnap float64
}

// Gesture is the state captured at pointer-down and carried between events.
type Gesture struct {
	State     State
	ElementID string

	start     geometry.Position
	initial   document.Element
	direction geometry.ResizeDirection
	aspect    float64
	refScale  float64
	fontSize  float64
	center    geometry.Position
	lastEmit  time.Time
}

// Active reports whether a pointer gesture is in progress.
func (g Gesture) Active() bool {
	return g.State == Dragging || g.State == Resizing || g.State == Rotating
}

// Step advances the gesture by one event and returns the commits to apply.
// It never mutates its inputs.
func Step(g Gesture, ev Event, env Env) (Gesture, []Commit) {
	if env.Element == nil {
		return Gesture{}, nil
	}
	switch g.State {
	case Idle:
		return stepIdle(ev, env)
	case EditingText:
		return stepEditing(g, ev, env)
	default:
		return stepActive(g, ev, env)
	}
}

func stepIdle(ev Event, env Env) (Gesture, []Commit) {
	el := env.Element
	b := el.Attrs()
	switch e := ev.(type) {
	case PointerDown:
		g := Gesture{
			ElementID: b.ID,
			start:     env.View.ScreenToDocument(e.Point),
			initial:   el,
		}
		switch e.Handle {
		case HandleBody:
			g.State = Dragging
		case HandleResize:
			if !e.Direction.Valid() {
				return Gesture{}, nil
			}
			g.State = Resizing
			g.direction = e.Direction
			g.aspect = b.Size.AspectRatio()
			g.refScale = geometry.ReferenceScale(b.Size)
			g.fontSize = fontSizeOf(el)
		case HandleRotate:
			g.State = Rotating
			g.center = b.Box().Center()
		default:
			return Gesture{}, nil
		}
		return g, nil

	case DoubleClick:
		if editable(el) {
			return Gesture{State: EditingText, ElementID: b.ID, initial: el}, nil
		}
	}
	return Gesture{}, nil
}

func stepEditing(g Gesture, ev Event, env Env) (Gesture, []Commit) {
	switch e := ev.(type) {
	case KeyDown:
		switch {
		case e.Key == "Enter" && !e.Shift:
			return Gesture{}, commitText(env.Element, e.Text)
		case e.Key == "Escape":
			return Gesture{}, nil
		}
	case Blur:
		return Gesture{}, commitText(env.Element, e.Text)
	}
	// new gestures are refused while editing
	return g, nil
}

func stepActive(g Gesture, ev Event, env Env) (Gesture, []Commit) {
	switch e := ev.(type) {
	case PointerMove:
		commits := g.compute(e.Point, e.Shift, e.Alt, env, false)
		throttle := env.Throttle
		if throttle <= 0 {
			throttle = DefaultThrottle
		}
		if !g.lastEmit.IsZero() && e.At.Sub(g.lastEmit) < throttle {
			return g, nil
		}
		g.lastEmit = e.At
		return g, commits

	case PointerUp:
		return Gesture{}, g.compute(e.Point, e.Shift, e.Alt, env, true)

	case KeyDown:
		if e.Key == "Escape" {
			return Gesture{}, g.restore()
		}
	}
	return g, nil
}

// compute derives the commits for the pointer at point. final applies
// boundary clamping to the result.
func (g Gesture) compute(point geometry.Position, shift, alt bool, env Env, final bool) []Commit {
	cur := env.View.ScreenToDocument(point)
	delta := cur.Sub(g.start)
	grid := env.Grid
	if alt {
		grid.Enabled = true
	}
	init := g.initial.Attrs()

	switch g.State {
	case Dragging:
		pos := grid.SnapPosition(init.Position.Add(delta))
		pos = geometry.ClampToBounds(pos, init.Size, env.Container)
		return []Commit{Move{ID: g.ElementID, Position: pos}}

	case Resizing:
		box := geometry.ComputeResize(g.direction, init.Size, init.Position, delta, geometry.ResizeOptions{
			PreserveAspectRatio: shift,
			AspectRatio:         g.aspect,
		})
		if grid.Active() {
			box.Position = grid.SnapPosition(box.Position)
			box.Size = grid.SnapSize(box.Size, geometry.MinSize)
		}
		if final {
			box.Position = geometry.ClampToBounds(box.Position, box.Size, env.Container)
		}
		if el, ok := g.scaleText(env.Element, box); ok {
			return []Commit{Update{Element: el}}
		}
		return []Commit{
			Resize{ID: g.ElementID, Size: box.Size},
			Move{ID: g.ElementID, Position: box.Position},
		}

	case Rotating:
		snap := 0.0
		if shift {
			snap = env.RotationSnap
			if snap <= 0 {
				snap = geometry.DefaultRotationSnap
			}
		}
		r := geometry.ComputeRotation(g.center, g.start, cur, init.Rotation, snap)
		return []Commit{Rotate{ID: g.ElementID, Rotation: r}}
	}
	return nil
}

// scaleText rebuilds elements with a text aspect so their font scales from
// the size captured at gesture start.
func (g Gesture) scaleText(el document.Element, box geometry.Box) (document.Element, bool) {
	b := el.Attrs()
	b.Position = box.Position
	b.Size = box.Size
	initSize := g.initial.Attrs().Size

	switch e := el.WithAttrs(b).(type) {
	case document.TextElement:
		e.FontSize = scaledFont(g.fontSize, geometry.ScaleFactor(initSize, box.Size))
		return e, true
	case document.ShapeElement:
		if !e.CarriesText() || g.refScale <= 0 {
			return nil, false
		}
		props := *e.TextProps
		props.FontSize = scaledFont(g.fontSize, geometry.ReferenceScale(box.Size)/g.refScale)
		e.TextProps = &props
		return e, true
	}
	return nil, false
}

func scaledFont(initial, factor float64) float64 {
	if !geometry.ShouldRescale(factor) {
		return initial
	}
	return geometry.ScaleFontSize(initial, factor)
}

// restore undoes a cancelled gesture.
func (g Gesture) restore() []Commit {
	init := g.initial.Attrs()
	switch g.State {
	case Dragging:
		return []Commit{Move{ID: g.ElementID, Position: init.Position}}
	case Resizing:
		return []Commit{Update{Element: g.initial}}
	case Rotating:
		return []Commit{Rotate{ID: g.ElementID, Rotation: init.Rotation}}
	}
	return nil
}

func fontSizeOf(el document.Element) float64 {
	switch e := el.(type) {
	case document.TextElement:
		return e.FontSize
	case document.ShapeElement:
		if e.TextProps != nil {
			return e.TextProps.FontSize
		}
	}
	return 0
}

func editable(el document.Element) bool {
	switch e := el.(type) {
	case document.TextElement:
		return true
	case document.ShapeElement:
		return e.HasText
	}
	return false
}

func commitText(el document.Element, text string) []Commit {
	empty := strings.TrimSpace(text) == ""
	switch e := el.(type) {
	case document.TextElement:
		if empty {
			text = DefaultTextContent
		}
		e.Content = text
		return []Commit{Update{Element: e}}
	case document.ShapeElement:
		if empty {
			text = DefaultShapeContent
		}
		e.Text = text
		return []Commit{Update{Element: e}}
	}
	return nil
}
