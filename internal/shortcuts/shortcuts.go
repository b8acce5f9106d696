// Package shortcuts maps editor key presses onto document store operations.
package shortcuts

import (
	"strings"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
)

const (
	NudgeStep      = 1.0
	LargeNudgeStep = 10.0
)

// Target is the subset of the document store the shortcuts drive.
type Target interface {
	Selected() string
	Element(id string) (document.Element, bool)
	RemoveElement(id string)
	DuplicateElement(id string) string
	MoveElement(id string, pos geometry.Position)
	BringToFront(id string)
	SendToBack(id string)
}

// KeyEvent is a key press as reported by the host.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Meta  bool
	Shift bool
	// InTextInput is set when focus is in a text field or editable region.
	InTextInput bool
}

func (e KeyEvent) command() bool { return e.Ctrl || e.Meta }

// Settings are the canvas toggles the shortcuts can flip.
type Settings struct {
	ShowGrid   bool
	SnapToGrid bool
}

type Handler struct {
	target   Target
	settings *Settings
}

func New(target Target, settings *Settings) *Handler {
	if settings == nil {
		settings = &Settings{}
	}
	return &Handler{target: target, settings: settings}
}

func (h *Handler) Settings() Settings { return *h.settings }

// HandleKey runs the shortcut bound to ev and reports whether one matched.
func (h *Handler) HandleKey(ev KeyEvent) bool {
	if ev.InTextInput {
		return false
	}
	sel := h.target.Selected()
	key := ev.Key

	switch {
	case ev.command() && strings.EqualFold(key, "g"):
		if ev.Shift {
			h.settings.SnapToGrid = !h.settings.SnapToGrid
		} else {
			h.settings.ShowGrid = !h.settings.ShowGrid
		}
		return true

	case sel == "":
		return false

	case key == "Delete" || key == "Backspace":
		h.target.RemoveElement(sel)
		return true

	case ev.command() && strings.EqualFold(key, "d"):
		h.target.DuplicateElement(sel)
		return true

	case ev.command() && ev.Shift && (key == "]" || key == "}"):
		h.target.BringToFront(sel)
		return true

	case ev.command() && ev.Shift && (key == "[" || key == "{"):
		h.target.SendToBack(sel)
		return true
	}

	if d, ok := nudge(key, ev.Shift); ok {
		el, found := h.target.Element(sel)
		if !found {
			return false
		}
		h.target.MoveElement(sel, el.Attrs().Position.Add(d))
		return true
	}
	return false
}

func nudge(key string, large bool) (geometry.Position, bool) {
	step := NudgeStep
	if large {
		step = LargeNudgeStep
	}
	switch key {
	case "ArrowUp":
		return geometry.Position{Y: -step}, true
	case "ArrowDown":
		return geometry.Position{Y: step}, true
	case "ArrowLeft":
		return geometry.Position{X: -step}, true
	case "ArrowRight":
		return geometry.Position{X: step}, true
	}
	return geometry.Position{}, false
}
