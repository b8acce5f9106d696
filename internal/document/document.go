package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/slides/internal/geometry"
	"github.com/inamate/slides/internal/typeid"
)

const (
	SlideWidth        = 720.0
	SlideHeight       = 405.0
	DefaultBackground = "#FFFFFF"
	DefaultTitle      = "Untitled Presentation"
)

// SlideSize is the reference slide size in document units.
var SlideSize = geometry.Size{Width: SlideWidth, Height: SlideHeight}

var ErrInvalidDocument = errors.New("invalid document")

type Slide struct {
	ID         string    `json:"id"`
	Elements   []Element `json:"elements"`
	Background string    `json:"background"`
}

// NewSlide returns an empty slide with the default background. Elements is
// nil when empty and encodes as [].
func NewSlide(id string) Slide {
	return Slide{ID: id, Background: DefaultBackground}
}

// Find returns the index and value of the element with the given id, or -1.
func (s Slide) Find(id string) (int, Element) {
	for i, el := range s.Elements {
		if el.Attrs().ID == id {
			return i, el
		}
	}
	return -1, nil
}

// MaxZIndex is the highest zIndex on the slide, never below 0.
func (s Slide) MaxZIndex() int {
	z := 0
	for _, el := range s.Elements {
		z = max(z, el.Attrs().ZIndex)
	}
	return z
}

// MinZIndex is the lowest zIndex on the slide, or 0 when it is empty.
func (s Slide) MinZIndex() int {
	if len(s.Elements) == 0 {
		return 0
	}
	z := s.Elements[0].Attrs().ZIndex
	for _, el := range s.Elements[1:] {
		z = min(z, el.Attrs().ZIndex)
	}
	return z
}

func (s Slide) MarshalJSON() ([]byte, error) {
	type alias Slide
	a := alias(s)
	if a.Elements == nil {
		a.Elements = []Element{}
	}
	return json.Marshal(a)
}

func (s *Slide) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         string            `json:"id"`
		Elements   []json.RawMessage `json:"elements"`
		Background string            `json:"background"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var elements []Element
	for _, r := range raw.Elements {
		el, err := DecodeElement(r)
		if err != nil {
			return fmt.Errorf("slide %s: %w", raw.ID, err)
		}
		elements = append(elements, el)
	}
	*s = Slide{ID: raw.ID, Elements: elements, Background: raw.Background}
	return nil
}

// Document is an immutable snapshot of a presentation. Transitions build new
// documents and share untouched slides and elements with the previous one.
type Document struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Slides            []Slide `json:"slides"`
	CurrentSlideIndex int     `json:"currentSlideIndex"`
}

// New returns a document with a single blank slide.
func New(id, slideID string) Document {
	return Document{
		ID:                id,
		Title:             DefaultTitle,
		Slides:            []Slide{NewSlide(slideID)},
		CurrentSlideIndex: 0,
	}
}

// NewDefault returns a blank document with freshly generated ids.
func NewDefault() Document {
	return New(typeid.NewDeckID(), typeid.NewSlideID())
}

// CurrentSlide returns the slide at CurrentSlideIndex.
func (d Document) CurrentSlide() (Slide, bool) {
	if d.CurrentSlideIndex < 0 || d.CurrentSlideIndex >= len(d.Slides) {
		return Slide{}, false
	}
	return d.Slides[d.CurrentSlideIndex], true
}

// SlideIndex returns the index of the slide with the given id, or -1.
func (d Document) SlideIndex(id string) int {
	for i, s := range d.Slides {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the structural invariants every snapshot must hold.
func (d Document) Validate() error {
	if len(d.Slides) == 0 {
		return fmt.Errorf("%w: no slides", ErrInvalidDocument)
	}
	if d.CurrentSlideIndex < 0 || d.CurrentSlideIndex >= len(d.Slides) {
		return fmt.Errorf("%w: current slide index %d out of range [0,%d)", ErrInvalidDocument, d.CurrentSlideIndex, len(d.Slides))
	}
	slideIDs := make(map[string]struct{}, len(d.Slides))
	for _, s := range d.Slides {
		if s.ID == "" {
			return fmt.Errorf("%w: slide without id", ErrInvalidDocument)
		}
		if _, dup := slideIDs[s.ID]; dup {
			return fmt.Errorf("%w: duplicate slide id %s", ErrInvalidDocument, s.ID)
		}
		slideIDs[s.ID] = struct{}{}

		elementIDs := make(map[string]struct{}, len(s.Elements))
		for _, el := range s.Elements {
			id := el.Attrs().ID
			if id == "" {
				return fmt.Errorf("%w: element without id on slide %s", ErrInvalidDocument, s.ID)
			}
			if _, dup := elementIDs[id]; dup {
				return fmt.Errorf("%w: duplicate element id %s on slide %s", ErrInvalidDocument, id, s.ID)
			}
			elementIDs[id] = struct{}{}
		}
	}
	return nil
}
