// Package engine hosts the editor core: it owns the document store, the
// viewport and the active gesture, and turns host input into store mutations
// and draw commands.
package engine

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
	"github.com/inamate/slides/internal/presets"
	"github.com/inamate/slides/internal/shortcuts"
	"github.com/inamate/slides/internal/store"
	"github.com/inamate/slides/internal/transform"
	"github.com/inamate/slides/internal/typeid"
	"github.com/inamate/slides/internal/viewport"
)

const DefaultGridSize = 8.0

type Options struct {
	GridSize     float64
	SnapToGrid   bool
	ShowGrid     bool
	Throttle     time.Duration
	RotationSnap float64
	Persister    store.Persister
	Presets      *presets.Catalog
	Logger       *slog.Logger
}

// Modifiers are the keyboard modifiers held during a pointer event.
type Modifiers struct {
	Shift bool
	Alt   bool
}

// Engine is not safe for concurrent use; drive it from the host's event loop.
type Engine struct {
	store     *store.Store
	view      *viewport.Viewport
	presets   *presets.Catalog
	settings  *shortcuts.Settings
	shortcuts *shortcuts.Handler
	active    *transform.Controller
	gridSize  float64
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an engine holding a blank document.
func New(opts Options) *Engine {
	if opts.GridSize <= 0 {
		opts.GridSize = DefaultGridSize
	}
	if opts.Presets == nil {
		opts.Presets = presets.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	storeOpts := []store.Option{store.WithLogger(logger)}
	if opts.Persister != nil {
		storeOpts = append(storeOpts, store.WithPersister(opts.Persister))
	}
	settings := &shortcuts.Settings{ShowGrid: opts.ShowGrid, SnapToGrid: opts.SnapToGrid}
	s := store.New(document.NewDefault(), storeOpts...)

	return &Engine{
		store:     s,
		view:      viewport.New(document.SlideSize),
		presets:   opts.Presets,
		settings:  settings,
		shortcuts: shortcuts.New(s, settings),
		gridSize:  opts.GridSize,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source used to stamp pointer events.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

func (e *Engine) Store() *store.Store { return e.store }

func (e *Engine) Viewport() *viewport.Viewport { return e.view }

// --- Commands (host → engine) ---

// LoadDocument installs a persisted snapshot. An unusable snapshot installs a
// blank document and the decode error is returned.
func (e *Engine) LoadDocument(data []byte) error {
	e.active = nil
	doc, err := document.Decode(data)
	if err != nil {
		e.logger.Warn("engine: loading default document", "error", err)
		e.store.Replace(document.NewDefault())
		return err
	}
	e.store.Replace(doc)
	return nil
}

// LoadSampleDocument installs the built-in sample deck.
func (e *Engine) LoadSampleDocument(deckID string) {
	e.active = nil
	if deckID == "" {
		deckID = typeid.NewDeckID()
	}
	e.store.Replace(e.presets.SampleDeck(deckID))
}

func (e *Engine) SetSelection(id string) { e.store.Select(id) }

// grid returns the snapping grid in effect.
func (e *Engine) grid() geometry.Grid {
	return geometry.Grid{Size: e.gridSize, Enabled: e.settings.SnapToGrid}
}

func (e *Engine) controllerFor(id string) *transform.Controller {
	if e.active != nil && e.active.ElementID() == id {
		e.active.SetGrid(e.grid())
		return e.active
	}
	e.active = transform.NewController(id, e.store, e.view, transform.Options{
		Grid:         e.grid(),
		Container:    document.SlideSize,
		Throttle:     e.opts.Throttle,
		RotationSnap: e.opts.RotationSnap,
		Logger:       e.logger,
	})
	return e.active
}

// busy reports whether a gesture or text edit is in progress.
func (e *Engine) busy() bool {
	return e.active != nil && e.active.State() != transform.Idle
}

// PointerDown starts a gesture. A body press hit-tests the screen point and
// selects what it finds; handle presses act on the current selection. It
// returns the id of the element the gesture targets, or "".
func (e *Engine) PointerDown(screen geometry.Position, handle transform.Handle, dir geometry.ResizeDirection) string {
	if e.busy() {
		// only one gesture at a time; editing also refuses new gestures
		e.active.Handle(transform.PointerDown{Handle: handle, Direction: dir, Point: screen, At: e.now()})
		return ""
	}
	id := e.store.Selected()
	if handle == transform.HandleBody {
		id = e.HitTest(screen.X, screen.Y)
		e.store.Select(id)
	}
	if id == "" {
		return ""
	}
	e.controllerFor(id).Handle(transform.PointerDown{Handle: handle, Direction: dir, Point: screen, At: e.now()})
	return id
}

func (e *Engine) PointerMove(screen geometry.Position, mods Modifiers) {
	if !e.busy() {
		return
	}
	e.active.Handle(transform.PointerMove{Point: screen, Shift: mods.Shift, Alt: mods.Alt, At: e.now()})
}

func (e *Engine) PointerUp(screen geometry.Position, mods Modifiers) {
	if !e.busy() {
		return
	}
	e.active.Handle(transform.PointerUp{Point: screen, Shift: mods.Shift, Alt: mods.Alt, At: e.now()})
}

// DoubleClick enters text editing on the element under the point. It reports
// whether editing started.
func (e *Engine) DoubleClick(screen geometry.Position) bool {
	if e.busy() {
		return false
	}
	id := e.HitTest(screen.X, screen.Y)
	if id == "" {
		return false
	}
	e.store.Select(id)
	return e.controllerFor(id).Handle(transform.DoubleClick{}) == transform.EditingText
}

// Editing returns the id of the element whose text is being edited, or "".
func (e *Engine) Editing() string {
	if e.active != nil && e.active.State() == transform.EditingText {
		return e.active.ElementID()
	}
	return ""
}

// KeyDown routes a key press to the active gesture or text edit, and to the
// shortcuts otherwise. text is the editor's current content while editing.
func (e *Engine) KeyDown(ev shortcuts.KeyEvent, text string) bool {
	if e.busy() {
		e.active.Handle(transform.KeyDown{Key: ev.Key, Shift: ev.Shift, Text: text})
		return true
	}
	return e.shortcuts.HandleKey(ev)
}

// Blur ends text editing with the editor's final content.
func (e *Engine) Blur(text string) {
	if e.Editing() == "" {
		return
	}
	e.active.Handle(transform.Blur{Text: text})
}

// --- Dropping new elements ---

func (e *Engine) dropPosition(screen geometry.Position) geometry.Position {
	return e.grid().SnapPosition(e.view.ScreenToDocument(screen))
}

// DropShape adds a preset shape at the screen point and returns its id.
func (e *Engine) DropShape(t document.ShapeType, screen geometry.Position) string {
	return e.store.AddElement(e.presets.NewShape("", t, e.dropPosition(screen)))
}

// DropText adds a preset text element. Unknown kinds add nothing.
func (e *Engine) DropText(t document.TextType, screen geometry.Position) string {
	el, ok := e.presets.NewText("", t, e.dropPosition(screen))
	if !ok {
		return ""
	}
	return e.store.AddElement(el)
}

func (e *Engine) DropImage(src, alt string, screen geometry.Position) string {
	return e.store.AddElement(e.presets.NewImage("", src, alt, e.dropPosition(screen)))
}

// AddChart adds a chart with sample data at its default position.
func (e *Engine) AddChart(t document.ChartType) string {
	return e.store.AddElement(e.presets.NewChart("", t, nil))
}

// --- Zoom ---

func (e *Engine) ZoomIn() { e.view.ZoomIn() }
func (e *Engine) ZoomOut() { e.view.ZoomOut() }
func (e *Engine) ZoomToPreset(percent float64) { e.view.ZoomToPreset(percent) }
func (e *Engine) ResetZoom() { e.view.Reset() }
func (e *Engine) FitToView(w, h float64) { e.view.FitToView(w, h) }
func (e *Engine) SetOrigin(p geometry.Position) { e.view.SetOrigin(p) }

// Wheel zooms only while ctrl is held; plain wheel events are left to the
// host for scrolling.
func (e *Engine) Wheel(deltaY float64, ctrl bool) bool {
	if !ctrl {
		return false
	}
	e.view.Wheel(deltaY)
	return true
}

// --- Queries (host ← engine) ---

// DrawCommands compiles the active slide for the current viewport.
func (e *Engine) DrawCommands() []DrawCommand {
	grid := 0.0
	if e.settings.ShowGrid {
		grid = e.gridSize
	}
	return CompileDrawCommands(e.store.CurrentSlide(), e.view.Matrix(), e.store.Selected(), grid)
}

// Render returns the draw commands as JSON.
func (e *Engine) Render() string {
	result, err := DrawCommandsToJSON(e.DrawCommands())
	if err != nil {
		e.logger.Error("engine: render failed", "error", err)
	}
	return result
}

// HitTest returns the topmost element under a screen point, or "".
func (e *Engine) HitTest(x, y float64) string {
	p := e.view.ScreenToDocument(geometry.Position{X: x, Y: y})
	return HitTest(e.store.CurrentSlide(), p)
}

// SelectionBounds returns the screen-space bounds of the selected element.
func (e *Engine) SelectionBounds() geometry.Rect {
	el, ok := e.store.Element(e.store.Selected())
	if !ok {
		return geometry.Rect{}
	}
	return e.view.Matrix().Bounds(ElementBounds(el.Attrs()))
}

func (e *Engine) GetSelectionBounds() string {
	return RectToJSON(e.SelectionBounds())
}

// GetDocument returns the full document as JSON.
func (e *Engine) GetDocument() string {
	data, err := document.Encode(e.store.Document())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// GetViewState returns zoom and canvas toggles as JSON.
func (e *Engine) GetViewState() string {
	data, _ := json.Marshal(map[string]any{
		"scale":      e.view.Scale(),
		"percent":    e.view.Percent(),
		"showGrid":   e.settings.ShowGrid,
		"snapToGrid": e.settings.SnapToGrid,
		"gridSize":   e.gridSize,
		"selection":  e.store.Selected(),
		"editing":    e.Editing(),
	})
	return string(data)
}
