package transform

import (
	"math"
	"testing"
	"time"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
	"github.com/inamate/slides/internal/store"
	"github.com/inamate/slides/internal/viewport"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func pt(x, y float64) geometry.Position { return geometry.Position{X: x, Y: y} }

type fixture struct {
	store *store.Store
	view  *viewport.Viewport
	id    string
}

func newFixture(t *testing.T, el document.Element) *fixture {
	t.Helper()
	s := store.New(document.New("deck_1", "slide_1"))
	id := s.AddElement(el)
	if id == "" {
		t.Fatal("element not added")
	}
	return &fixture{store: s, view: viewport.New(document.SlideSize), id: id}
}

func (f *fixture) controller(grid geometry.Grid) *Controller {
	return NewController(f.id, f.store, f.view, Options{Grid: grid, Container: document.SlideSize})
}

func (f *fixture) element(t *testing.T) document.Element {
	t.Helper()
	el, ok := f.store.Element(f.id)
	if !ok {
		t.Fatal("element missing")
	}
	return el
}

func square(x, y float64) document.ShapeElement {
	return document.ShapeElement{
		Base:      document.Base{Position: pt(x, y), Size: geometry.Size{Width: 100, Height: 100}},
		ShapeType: document.ShapeRect,
		Opacity:   1,
	}
}

func TestDragSnapsToGrid(t *testing.T) {
	f := newFixture(t, square(50, 50))
	c := f.controller(geometry.Grid{Size: 8, Enabled: true})

	c.Handle(PointerDown{Handle: HandleBody, Point: pt(200, 200), At: at(0)})
	if c.State() != Dragging {
		t.Fatalf("state = %s", c.State())
	}
	c.Handle(PointerMove{Point: pt(230, 190), At: at(20)})
	if got := f.element(t).Attrs().Position; got != pt(80, 40) {
		t.Fatalf("during drag = %+v", got)
	}
	c.Handle(PointerUp{Point: pt(230, 190), At: at(40)})
	if got := f.element(t).Attrs().Position; got != pt(80, 40) {
		t.Fatalf("final = %+v, want (80,40)", got)
	}
	if c.State() != Idle {
		t.Fatalf("state after release = %s", c.State())
	}
}

func TestDragUsesViewportScale(t *testing.T) {
	f := newFixture(t, square(50, 50))
	f.view.ZoomToPreset(200)
	c := f.controller(geometry.Grid{})

	c.Handle(PointerDown{Handle: HandleBody, Point: pt(100, 100), At: at(0)})
	c.Handle(PointerUp{Point: pt(160, 80), At: at(10)})
	if got := f.element(t).Attrs().Position; got != pt(80, 40) {
		t.Fatalf("scaled drag = %+v", got)
	}
}

func TestDragClampsToSlide(t *testing.T) {
	f := newFixture(t, square(50, 50))
	c := f.controller(geometry.Grid{})
	c.Handle(PointerDown{Handle: HandleBody, Point: pt(0, 0), At: at(0)})
	c.Handle(PointerUp{Point: pt(5000, -300), At: at(10)})
	if got := f.element(t).Attrs().Position; got != pt(620, 0) {
		t.Fatalf("clamped = %+v", got)
	}
}

func TestMovesAreThrottled(t *testing.T) {
	f := newFixture(t, square(0, 0))
	c := f.controller(geometry.Grid{})
	c.Handle(PointerDown{Handle: HandleBody, Point: pt(0, 0), At: at(0)})

	c.Handle(PointerMove{Point: pt(10, 0), At: at(1)})
	v := f.store.Version()
	c.Handle(PointerMove{Point: pt(20, 0), At: at(5)})
	c.Handle(PointerMove{Point: pt(30, 0), At: at(16)})
	if f.store.Version() != v {
		t.Fatal("moves inside the throttle window were committed")
	}
	if got := f.element(t).Attrs().Position; got != pt(10, 0) {
		t.Fatalf("position = %+v", got)
	}
	c.Handle(PointerMove{Point: pt(40, 0), At: at(17)})
	if got := f.element(t).Attrs().Position; got != pt(40, 0) {
		t.Fatalf("position after window = %+v", got)
	}
	// release is never throttled
	c.Handle(PointerUp{Point: pt(45, 0), At: at(18)})
	if got := f.element(t).Attrs().Position; got != pt(45, 0) {
		t.Fatalf("release position = %+v", got)
	}
}

func TestEscapeCancelsDrag(t *testing.T) {
	f := newFixture(t, square(50, 50))
	c := f.controller(geometry.Grid{})
	c.Handle(PointerDown{Handle: HandleBody, Point: pt(0, 0), At: at(0)})
	c.Handle(PointerMove{Point: pt(100, 100), At: at(20)})
	c.Handle(KeyDown{Key: "Escape"})
	if c.State() != Idle {
		t.Fatalf("state = %s", c.State())
	}
	if got := f.element(t).Attrs().Position; got != pt(50, 50) {
		t.Fatalf("cancelled drag left element at %+v", got)
	}
}

func TestResizeFromCorner(t *testing.T) {
	f := newFixture(t, square(100, 100))
	c := f.controller(geometry.Grid{})
	c.Handle(PointerDown{Handle: HandleResize, Direction: geometry.NorthWest, Point: pt(100, 100), At: at(0)})
	c.Handle(PointerUp{Point: pt(70, 80), At: at(30)})

	b := f.element(t).Attrs()
	if b.Size != (geometry.Size{Width: 130, Height: 120}) || b.Position != pt(70, 80) {
		t.Fatalf("resize = %+v", b)
	}
}

func TestResizeWithAspectLockAndGrid(t *testing.T) {
	el := square(0, 0)
	el.Size = geometry.Size{Width: 200, Height: 100}
	f := newFixture(t, el)
	c := f.controller(geometry.Grid{Size: 8, Enabled: true})
	c.Handle(PointerDown{Handle: HandleResize, Direction: geometry.SouthEast, Point: pt(200, 100), At: at(0)})
	c.Handle(PointerUp{Point: pt(300, 105), Shift: true, At: at(30)})

	got := f.element(t).Attrs().Size
	if got != (geometry.Size{Width: 304, Height: 152}) {
		t.Fatalf("locked + snapped size = %+v", got)
	}
}

func TestResizeNeverBelowMinimum(t *testing.T) {
	f := newFixture(t, square(100, 100))
	c := f.controller(geometry.Grid{Size: 8, Enabled: true})
	c.Handle(PointerDown{Handle: HandleResize, Direction: geometry.East, Point: pt(200, 150), At: at(0)})
	c.Handle(PointerUp{Point: pt(-400, 150), At: at(30)})
	if got := f.element(t).Attrs().Size; got.Width < geometry.MinSize || got.Height < geometry.MinSize {
		t.Fatalf("size = %+v", got)
	}
}

func TestResizeScalesTextFromGestureStart(t *testing.T) {
	text := document.TextElement{
		Base:      document.Base{Size: geometry.Size{Width: 100, Height: 50}},
		TextType:  document.TextBody,
		Content:   "Body text",
		TextStyle: document.TextStyle{FontSize: 16},
	}
	f := newFixture(t, text)
	c := f.controller(geometry.Grid{})
	c.Handle(PointerDown{Handle: HandleResize, Direction: geometry.SouthEast, Point: pt(100, 50), At: at(0)})
	c.Handle(PointerMove{Point: pt(125, 62.5), At: at(20)})
	c.Handle(PointerMove{Point: pt(150, 75), At: at(40)})
	c.Handle(PointerUp{Point: pt(150, 75), At: at(60)})

	got := f.element(t).(document.TextElement)
	if got.Size != (geometry.Size{Width: 150, Height: 75}) {
		t.Fatalf("size = %+v", got.Size)
	}
	if got.FontSize != 24 {
		t.Fatalf("fontSize = %v, want 24", got.FontSize)
	}
}

func TestResizeScalesShapeText(t *testing.T) {
	shape := square(0, 0)
	shape.HasText = true
	shape.Text = "Add text"
	shape.TextProps = &document.TextStyle{FontSize: 14}
	f := newFixture(t, shape)
	c := f.controller(geometry.Grid{})
	c.Handle(PointerDown{Handle: HandleResize, Direction: geometry.SouthEast, Point: pt(100, 100), At: at(0)})
	c.Handle(PointerUp{Point: pt(200, 200), At: at(30)})

	got := f.element(t).(document.ShapeElement)
	if got.TextProps.FontSize != 28 {
		t.Fatalf("shape font = %v, want 28", got.TextProps.FontSize)
	}
}

func TestRotateSnapsWithShift(t *testing.T) {
	f := newFixture(t, square(100, 100))
	c := f.controller(geometry.Grid{})
	// centre is (150,150); start pointer straight right of it
	c.Handle(PointerDown{Handle: HandleRotate, Point: pt(250, 150), At: at(0)})
	c.Handle(PointerMove{Point: pt(150 + 100*math.Cos(0.3), 150 + 100*math.Sin(0.3)), Shift: true, At: at(20)})
	if got := f.element(t).Attrs().Rotation; got != 15 {
		t.Fatalf("snapped rotation = %v", got)
	}
	c.Handle(PointerUp{Point: pt(150, 250), At: at(40)})
	if got := f.element(t).Attrs().Rotation; math.Abs(got-90) > 1e-9 {
		t.Fatalf("final rotation = %v", got)
	}
}

func TestRotationAlwaysNormalized(t *testing.T) {
	f := newFixture(t, square(100, 100))
	c := f.controller(geometry.Grid{})
	c.Handle(PointerDown{Handle: HandleRotate, Point: pt(250, 150), At: at(0)})
	c.Handle(PointerUp{Point: pt(150, 50), At: at(10)})
	if got := f.element(t).Attrs().Rotation; got < 0 || got >= 360 {
		t.Fatalf("rotation out of range: %v", got)
	}
}

func TestTextEditing(t *testing.T) {
	text := document.TextElement{
		Base:     document.Base{Size: geometry.Size{Width: 300, Height: 50}},
		TextType: document.TextBody,
		Content:  "Body text",
	}
	f := newFixture(t, text)
	c := f.controller(geometry.Grid{})

	c.Handle(DoubleClick{})
	if c.State() != EditingText {
		t.Fatalf("state = %s", c.State())
	}
	c.Handle(PointerDown{Handle: HandleBody, Point: pt(0, 0), At: at(0)})
	if c.State() != EditingText {
		t.Fatal("drag should be refused while editing")
	}
	c.Handle(KeyDown{Key: "Enter", Shift: true, Text: "line"})
	if c.State() != EditingText {
		t.Fatal("shift+enter should not end editing")
	}
	c.Handle(KeyDown{Key: "Enter", Text: "Hello"})
	if got := f.element(t).(document.TextElement).Content; got != "Hello" {
		t.Fatalf("content = %q", got)
	}

	c.Handle(DoubleClick{})
	c.Handle(Blur{Text: "   "})
	if got := f.element(t).(document.TextElement).Content; got != DefaultTextContent {
		t.Fatalf("empty edit = %q", got)
	}

	c.Handle(DoubleClick{})
	c.Handle(KeyDown{Key: "Escape", Text: "discarded"})
	if got := f.element(t).(document.TextElement).Content; got != DefaultTextContent || c.State() != Idle {
		t.Fatalf("escape committed %q", got)
	}
}

func TestShapeTextEditing(t *testing.T) {
	plain := newFixture(t, square(0, 0))
	c := plain.controller(geometry.Grid{})
	c.Handle(DoubleClick{})
	if c.State() != Idle {
		t.Fatal("shape without text is not editable")
	}

	shape := square(0, 0)
	shape.HasText = true
	f := newFixture(t, shape)
	c = f.controller(geometry.Grid{})
	c.Handle(DoubleClick{})
	c.Handle(Blur{Text: ""})
	if got := f.element(t).(document.ShapeElement).Text; got != DefaultShapeContent {
		t.Fatalf("shape text = %q", got)
	}
}

func TestElementRemovedMidGesture(t *testing.T) {
	f := newFixture(t, square(0, 0))
	c := f.controller(geometry.Grid{})
	c.Handle(PointerDown{Handle: HandleBody, Point: pt(0, 0), At: at(0)})
	f.store.RemoveElement(f.id)
	if st := c.Handle(PointerMove{Point: pt(10, 10), At: at(20)}); st != Idle {
		t.Fatalf("state = %s", st)
	}
}

func TestStepIsPure(t *testing.T) {
	el := square(10, 10)
	env := Env{Element: el, View: viewport.New(document.SlideSize), Container: document.SlideSize}
	g, commits := Step(Gesture{}, PointerDown{Handle: HandleBody, Point: pt(0, 0), At: at(0)}, env)
	if len(commits) != 0 || g.State != Dragging {
		t.Fatalf("pointer down: %+v %v", g, commits)
	}
	g2, commits := Step(g, PointerMove{Point: pt(5, 5), At: at(20)}, env)
	if len(commits) != 1 {
		t.Fatalf("commits = %v", commits)
	}
	if g.lastEmit != (time.Time{}) || g2.lastEmit != at(20) {
		t.Fatal("input gesture mutated or output not advanced")
	}
	if mv := commits[0].(Move); mv.Position != pt(15, 15) {
		t.Fatalf("move = %+v", mv)
	}
}
