package transform

import (
	"time"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
)

// Handle identifies which part of the element a pointer went down on.
type Handle int

const (
	HandleBody Handle = iota
	HandleResize
	HandleRotate
)

// Event is one of PointerDown, PointerMove, PointerUp, DoubleClick, KeyDown
// or Blur. Pointer positions are in screen pixels.
type Event interface{ isEvent() }

type PointerDown struct {
	Handle    Handle
	Direction geometry.ResizeDirection
	Point     geometry.Position
	At        time.Time
}

type PointerMove struct {
	Point geometry.Position
	// Shift locks the aspect ratio while resizing and snaps rotation.
	Shift bool
	// Alt snaps to the grid for this move even when snapping is off.
	Alt bool
	At  time.Time
}

type PointerUp struct {
	Point geometry.Position
	Shift bool
	Alt   bool
	At    time.Time
}

type DoubleClick struct{}

// KeyDown carries the editor's current text so Enter can commit it.
type KeyDown struct {
	Key   string
	Shift bool
	Text  string
}

// Blur ends text editing with the editor's final text.
type Blur struct {
	Text string
}

func (PointerDown) isEvent() {}
func (PointerMove) isEvent() {}
func (PointerUp) isEvent()   {}
func (DoubleClick) isEvent() {}
func (KeyDown) isEvent()     {}
func (Blur) isEvent()        {}

// Commit is a mutation the host applies to the document store.
type Commit interface{ isCommit() }

type Move struct {
	ID       string
	Position geometry.Position
}

type Resize struct {
	ID   string
	Size geometry.Size
}

type Rotate struct {
	ID       string
	Rotation float64
}

// Update replaces the whole element, used when several attributes change
// together.
type Update struct {
	Element document.Element
}

func (Move) isCommit()   {}
func (Resize) isCommit() {}
func (Rotate) isCommit() {}
func (Update) isCommit() {}
