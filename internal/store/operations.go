package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
)

type OpType string

const (
	OpSlideAdd         OpType = "slide.add"
	OpSlideRemove      OpType = "slide.remove"
	OpSlideReorder     OpType = "slide.reorder"
	OpSlideBackground  OpType = "slide.background"
	OpSlideChange      OpType = "slide.change"
	OpElementAdd       OpType = "element.add"
	OpElementUpdate    OpType = "element.update"
	OpElementRemove    OpType = "element.remove"
	OpElementDuplicate OpType = "element.duplicate"
	OpElementMove      OpType = "element.move"
	OpElementResize    OpType = "element.resize"
	OpElementRotate    OpType = "element.rotate"
	OpElementFront     OpType = "element.front"
	OpElementBack      OpType = "element.back"
	OpDocumentTitle    OpType = "document.title"
)

var (
	ErrUnknownOp   = errors.New("unknown operation type")
	ErrMalformedOp = errors.New("malformed operation")
)

// Operation is the serializable form of a store mutation. Ids the store would
// normally generate may be supplied so that replaying an operation is
// idempotent.
type Operation struct {
	Type       OpType             `json:"type"`
	SlideID    string             `json:"slideId,omitempty"`
	ElementID  string             `json:"elementId,omitempty"`
	CopyID     string             `json:"copyId,omitempty"`
	From       *int               `json:"from,omitempty"`
	To         *int               `json:"to,omitempty"`
	Index      *int               `json:"index,omitempty"`
	Background string             `json:"background,omitempty"`
	Title      *string            `json:"title,omitempty"`
	Position   *geometry.Position `json:"position,omitempty"`
	Size       *geometry.Size     `json:"size,omitempty"`
	Rotation   *float64           `json:"rotation,omitempty"`
	Element    json.RawMessage    `json:"element,omitempty"`
}

// Apply performs op and returns it with any generated ids filled in. Errors
// are reserved for malformed or unknown operations; operations that target
// missing slides or elements succeed without effect. Operations never change
// the selection, which belongs to the local editor and not the shared document.
func (s *Store) Apply(op Operation) (Operation, error) {
	malformed := func(what string) (Operation, error) {
		return op, fmt.Errorf("%w: %s requires %s", ErrMalformedOp, op.Type, what)
	}

	switch op.Type {
	case OpSlideAdd:
		if op.SlideID == "" {
			op.SlideID = s.newSlideID()
		}
		s.mutate(func(d document.Document) document.Document { return AddSlide(d, op.SlideID) })

	case OpSlideRemove:
		if op.SlideID == "" {
			return malformed("slideId")
		}
		s.RemoveSlide(op.SlideID)

	case OpSlideReorder:
		if op.From == nil || op.To == nil {
			return malformed("from and to")
		}
		s.ReorderSlides(*op.From, *op.To)

	case OpSlideBackground:
		if op.SlideID == "" || op.Background == "" {
			return malformed("slideId and background")
		}
		s.UpdateSlideBackground(op.SlideID, op.Background)

	case OpSlideChange:
		if op.Index == nil {
			return malformed("index")
		}
		s.ChangeSlide(*op.Index)

	case OpElementAdd:
		el, err := decodeOpElement(op)
		if err != nil {
			return op, err
		}
		if op.ElementID == "" {
			op.ElementID = el.Attrs().ID
		}
		if op.ElementID == "" {
			op.ElementID = s.newElementID()
		}
		// Unlike Store.AddElement, the new element is not selected.
		s.mutate(func(d document.Document) document.Document { return AddElement(d, el, op.ElementID) })

	case OpElementUpdate:
		el, err := decodeOpElement(op)
		if err != nil {
			return op, err
		}
		if el.Attrs().ID == "" {
			return malformed("element.id")
		}
		op.ElementID = el.Attrs().ID
		s.UpdateElement(el)

	case OpElementRemove:
		if op.ElementID == "" {
			return malformed("elementId")
		}
		s.RemoveElement(op.ElementID)

	case OpElementDuplicate:
		if op.ElementID == "" {
			return malformed("elementId")
		}
		if op.CopyID == "" {
			op.CopyID = s.newElementID()
		}
		// Unlike Store.DuplicateElement, the copy is not selected.
		s.mutate(func(d document.Document) document.Document { return DuplicateElement(d, op.ElementID, op.CopyID) })

	case OpElementMove:
		if op.ElementID == "" || op.Position == nil {
			return malformed("elementId and position")
		}
		s.MoveElement(op.ElementID, *op.Position)

	case OpElementResize:
		if op.ElementID == "" || op.Size == nil {
			return malformed("elementId and size")
		}
		s.ResizeElement(op.ElementID, *op.Size)

	case OpElementRotate:
		if op.ElementID == "" || op.Rotation == nil {
			return malformed("elementId and rotation")
		}
		s.RotateElement(op.ElementID, *op.Rotation)

	case OpElementFront:
		if op.ElementID == "" {
			return malformed("elementId")
		}
		s.BringToFront(op.ElementID)

	case OpElementBack:
		if op.ElementID == "" {
			return malformed("elementId")
		}
		s.SendToBack(op.ElementID)

	case OpDocumentTitle:
		if op.Title == nil {
			return malformed("title")
		}
		s.UpdateDocumentTitle(*op.Title)

	default:
		return op, fmt.Errorf("%w: %s", ErrUnknownOp, op.Type)
	}
	return op, nil
}

func decodeOpElement(op Operation) (document.Element, error) {
	if len(op.Element) == 0 {
		return nil, fmt.Errorf("%w: %s requires element", ErrMalformedOp, op.Type)
	}
	el, err := document.DecodeElement(op.Element)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOp, err)
	}
	return el, nil
}
