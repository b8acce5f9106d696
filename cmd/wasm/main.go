//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/engine"
	"github.com/inamate/slides/internal/geometry"
	"github.com/inamate/slides/internal/persist"
	"github.com/inamate/slides/internal/shortcuts"
	"github.com/inamate/slides/internal/store"
	"github.com/inamate/slides/internal/transform"
)

const storageKey = "slides.document"

var eng *engine.Engine

// localStorageSaver writes snapshots to the browser's localStorage.
type localStorageSaver struct{}

func (localStorageSaver) Save(_ context.Context, doc document.Document) error {
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}
	js.Global().Get("localStorage").Call("setItem", storageKey, string(data))
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	saver := persist.NewAutosaver(localStorageSaver{}, logger)
	go saver.Run(context.Background())

	eng = engine.New(engine.Options{Persister: saver, Logger: logger})
	restoreSaved(js.Undefined(), nil)

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("restoreSaved", js.FuncOf(restoreSaved))
	api.Set("applyOperation", js.FuncOf(applyOperation))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("doubleClick", js.FuncOf(doubleClick))
	api.Set("keyDown", js.FuncOf(keyDown))
	api.Set("blur", js.FuncOf(blur))
	api.Set("dropShape", js.FuncOf(dropShape))
	api.Set("dropText", js.FuncOf(dropText))
	api.Set("dropImage", js.FuncOf(dropImage))
	api.Set("addChart", js.FuncOf(addChart))
	api.Set("zoomIn", js.FuncOf(func(js.Value, []js.Value) any { eng.ZoomIn(); return nil }))
	api.Set("zoomOut", js.FuncOf(func(js.Value, []js.Value) any { eng.ZoomOut(); return nil }))
	api.Set("resetZoom", js.FuncOf(func(js.Value, []js.Value) any { eng.ResetZoom(); return nil }))
	api.Set("zoomToPreset", js.FuncOf(zoomToPreset))
	api.Set("fitToView", js.FuncOf(fitToView))
	api.Set("wheel", js.FuncOf(wheel))
	api.Set("setOrigin", js.FuncOf(setOrigin))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelectionBounds", js.FuncOf(func(js.Value, []js.Value) any { return js.ValueOf(eng.GetSelectionBounds()) }))
	api.Set("getDocument", js.FuncOf(func(js.Value, []js.Value) any { return js.ValueOf(eng.GetDocument()) }))
	api.Set("getViewState", js.FuncOf(func(js.Value, []js.Value) any { return js.ValueOf(eng.GetViewState()) }))

	js.Global().Set("slidesEngine", api)
	js.Global().Set("slidesWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func okResult() any {
	return js.ValueOf(map[string]any{"ok": true})
}

func point(args []js.Value, i int) geometry.Position {
	if len(args) < i+2 {
		return geometry.Position{}
	}
	return geometry.Position{X: args[i].Float(), Y: args[i+1].Float()}
}

func boolArg(args []js.Value, i int) bool {
	return len(args) > i && args[i].Truthy()
}

func stringArg(args []js.Value, i int) string {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing document JSON"})
	}
	if err := eng.LoadDocument([]byte(args[0].String())); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	eng.LoadSampleDocument(stringArg(args, 0))
	return okResult()
}

func restoreSaved(this js.Value, args []js.Value) any {
	saved := js.Global().Get("localStorage").Call("getItem", storageKey)
	if saved.Type() != js.TypeString {
		return okResult()
	}
	if err := eng.LoadDocument([]byte(saved.String())); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func applyOperation(this js.Value, args []js.Value) any {
	var op store.Operation
	if err := json.Unmarshal([]byte(stringArg(args, 0)), &op); err != nil {
		return errorResult(err)
	}
	resolved, err := eng.Store().Apply(op)
	if err != nil {
		return errorResult(err)
	}
	data, _ := json.Marshal(resolved)
	return js.ValueOf(string(data))
}

func setSelection(this js.Value, args []js.Value) any {
	eng.SetSelection(stringArg(args, 0))
	return nil
}

var handles = map[string]transform.Handle{
	"body":   transform.HandleBody,
	"resize": transform.HandleResize,
	"rotate": transform.HandleRotate,
}

// pointerDown(x, y, handle, direction)
func pointerDown(this js.Value, args []js.Value) any {
	h, ok := handles[stringArg(args, 2)]
	if !ok {
		h = transform.HandleBody
	}
	return js.ValueOf(eng.PointerDown(point(args, 0), h, geometry.ResizeDirection(stringArg(args, 3))))
}

// pointerMove(x, y, shift, alt)
func pointerMove(this js.Value, args []js.Value) any {
	eng.PointerMove(point(args, 0), engine.Modifiers{Shift: boolArg(args, 2), Alt: boolArg(args, 3)})
	return nil
}

func pointerUp(this js.Value, args []js.Value) any {
	eng.PointerUp(point(args, 0), engine.Modifiers{Shift: boolArg(args, 2), Alt: boolArg(args, 3)})
	return nil
}

func doubleClick(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.DoubleClick(point(args, 0)))
}

// keyDown({key, ctrlKey, metaKey, shiftKey, inTextInput}, currentText)
func keyDown(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		return js.ValueOf(false)
	}
	ev := args[0]
	handled := eng.KeyDown(shortcuts.KeyEvent{
		Key:         ev.Get("key").String(),
		Ctrl:        ev.Get("ctrlKey").Truthy(),
		Meta:        ev.Get("metaKey").Truthy(),
		Shift:       ev.Get("shiftKey").Truthy(),
		InTextInput: ev.Get("inTextInput").Truthy(),
	}, stringArg(args, 1))
	return js.ValueOf(handled)
}

func blur(this js.Value, args []js.Value) any {
	eng.Blur(stringArg(args, 0))
	return nil
}

func dropShape(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.DropShape(document.ShapeType(stringArg(args, 0)), point(args, 1)))
}

func dropText(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.DropText(document.TextType(stringArg(args, 0)), point(args, 1)))
}

func dropImage(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.DropImage(stringArg(args, 0), stringArg(args, 1), point(args, 2)))
}

func addChart(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.AddChart(document.ChartType(stringArg(args, 0))))
}

func zoomToPreset(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	eng.ZoomToPreset(args[0].Float())
	return nil
}

func fitToView(this js.Value, args []js.Value) any {
	p := point(args, 0)
	eng.FitToView(p.X, p.Y)
	return nil
}

func wheel(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.Wheel(args[0].Float(), boolArg(args, 1)))
}

func setOrigin(this js.Value, args []js.Value) any {
	eng.SetOrigin(point(args, 0))
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) any {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}
