// Package store holds the document state transitions and the stateful store
// that bundles them with selection, id generation and persistence.
//
// Every transition is a pure function from one immutable snapshot to the
// next. Unknown targets and out-of-range indexes return the input unchanged.
package store

import (
	"math"
	"slices"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
)

// DuplicateOffset is how far a duplicate is shifted from its source.
var DuplicateOffset = geometry.Position{X: 20, Y: 20}

// AddSlide appends an empty slide and makes it current.
func AddSlide(d document.Document, slideID string) document.Document {
	if slideID == "" || d.SlideIndex(slideID) >= 0 {
		return d
	}
	d.Slides = append(slices.Clip(d.Slides), document.NewSlide(slideID))
	d.CurrentSlideIndex = len(d.Slides) - 1
	return d
}

// RemoveSlide drops a slide unless it is the last one left.
func RemoveSlide(d document.Document, slideID string) document.Document {
	i := d.SlideIndex(slideID)
	if i < 0 || len(d.Slides) <= 1 {
		return d
	}
	d.Slides = slices.Delete(slices.Clone(d.Slides), i, i+1)
	d.CurrentSlideIndex = min(d.CurrentSlideIndex, len(d.Slides)-1)
	return d
}

// ReorderSlides moves the slide at src to dst, keeping the current index on
// the same logical slide.
func ReorderSlides(d document.Document, src, dst int) document.Document {
	n := len(d.Slides)
	if src == dst || src < 0 || src >= n || dst < 0 || dst >= n {
		return d
	}
	slides := slices.Clone(d.Slides)
	moved := slides[src]
	slides = slices.Delete(slides, src, src+1)
	slides = slices.Insert(slides, dst, moved)
	d.Slides = slides

	cur := d.CurrentSlideIndex
	switch {
	case cur == src:
		cur = dst
	case src < cur && cur <= dst:
		cur--
	case dst <= cur && cur < src:
		cur++
	}
	d.CurrentSlideIndex = cur
	return d
}

// UpdateSlideBackground sets a slide's background color.
func UpdateSlideBackground(d document.Document, slideID, background string) document.Document {
	i := d.SlideIndex(slideID)
	if i < 0 || d.Slides[i].Background == background {
		return d
	}
	d.Slides = slices.Clone(d.Slides)
	d.Slides[i].Background = background
	return d
}

// ChangeSlide makes index current.
func ChangeSlide(d document.Document, index int) document.Document {
	if index < 0 || index >= len(d.Slides) {
		return d
	}
	d.CurrentSlideIndex = index
	return d
}

// UpdateDocumentTitle renames the document.
func UpdateDocumentTitle(d document.Document, title string) document.Document {
	d.Title = title
	return d
}

// AddElement places el on the active slide under id, on top of every other
// element.
func AddElement(d document.Document, el document.Element, id string) document.Document {
	if el == nil || id == "" {
		return d
	}
	return editSlide(d, func(s document.Slide) (document.Slide, bool) {
		if i, _ := s.Find(id); i >= 0 {
			return s, false
		}
		b := el.Attrs()
		b.ID = id
		b.ZIndex = s.MaxZIndex() + 1
		s.Elements = append(slices.Clip(s.Elements), el.WithAttrs(b))
		return s, true
	})
}

// UpdateElement replaces the element with the same id on the active slide.
// Changing an element's kind is not allowed.
func UpdateElement(d document.Document, el document.Element) document.Document {
	if el == nil {
		return d
	}
	return replaceElement(d, el.Attrs().ID, func(old document.Element) (document.Element, bool) {
		if old.Kind() != el.Kind() {
			return old, false
		}
		return el, true
	})
}

// RemoveElement deletes an element from the active slide.
func RemoveElement(d document.Document, id string) document.Document {
	return editSlide(d, func(s document.Slide) (document.Slide, bool) {
		i, _ := s.Find(id)
		if i < 0 {
			return s, false
		}
		s.Elements = slices.Delete(slices.Clone(s.Elements), i, i+1)
		return s, true
	})
}

// DuplicateElement copies an element under copyID, offset from the source and
// placed on top.
func DuplicateElement(d document.Document, id, copyID string) document.Document {
	if copyID == "" {
		return d
	}
	return editSlide(d, func(s document.Slide) (document.Slide, bool) {
		_, src := s.Find(id)
		if src == nil {
			return s, false
		}
		if i, _ := s.Find(copyID); i >= 0 {
			return s, false
		}
		b := src.Attrs()
		b.ID = copyID
		b.Position = b.Position.Add(DuplicateOffset)
		b.ZIndex = s.MaxZIndex() + 1
		s.Elements = append(slices.Clip(s.Elements), src.WithAttrs(b))
		return s, true
	})
}

// MoveElement sets an element's position.
func MoveElement(d document.Document, id string, pos geometry.Position) document.Document {
	return editAttrs(d, id, func(b document.Base) document.Base {
		b.Position = pos
		return b
	})
}

// ResizeElement sets an element's size, floored at geometry.MinSize. Text and
// shapes carrying text get their font size scaled when the size changes
// noticeably.
func ResizeElement(d document.Document, id string, size geometry.Size) document.Document {
	size = geometry.Size{Width: floorSize(size.Width), Height: floorSize(size.Height)}
	return replaceElement(d, id, func(old document.Element) (document.Element, bool) {
		b := old.Attrs()
		if b.Size == size {
			return old, false
		}
		factor := geometry.ScaleFactor(b.Size, size)
		b.Size = size
		return rescaleText(old.WithAttrs(b), factor), true
	})
}

// RotateElement sets an element's rotation in degrees.
func RotateElement(d document.Document, id string, rotation float64) document.Document {
	return editAttrs(d, id, func(b document.Base) document.Base {
		b.Rotation = rotation
		return b
	})
}

// BringToFront stacks an element above everything else on its slide.
func BringToFront(d document.Document, id string) document.Document {
	s, ok := d.CurrentSlide()
	if !ok {
		return d
	}
	z := s.MaxZIndex() + 1
	return editAttrs(d, id, func(b document.Base) document.Base {
		b.ZIndex = z
		return b
	})
}

// SendToBack stacks an element below everything else on its slide.
func SendToBack(d document.Document, id string) document.Document {
	s, ok := d.CurrentSlide()
	if !ok {
		return d
	}
	z := s.MinZIndex() - 1
	return editAttrs(d, id, func(b document.Base) document.Base {
		b.ZIndex = z
		return b
	})
}

func floorSize(v float64) float64 {
	if math.IsNaN(v) {
		return geometry.MinSize
	}
	return math.Max(geometry.MinSize, v)
}

// rescaleText applies the font scaling rule to elements with a text aspect.
func rescaleText(el document.Element, factor float64) document.Element {
	if !geometry.ShouldRescale(factor) {
		return el
	}
	switch e := el.(type) {
	case document.TextElement:
		e.FontSize = geometry.ScaleFontSize(e.FontSize, factor)
		return e
	case document.ShapeElement:
		if !e.CarriesText() {
			return e
		}
		props := *e.TextProps
		props.FontSize = geometry.ScaleFontSize(props.FontSize, factor)
		e.TextProps = &props
		return e
	}
	return el
}

func editSlide(d document.Document, fn func(document.Slide) (document.Slide, bool)) document.Document {
	s, ok := d.CurrentSlide()
	if !ok {
		return d
	}
	next, changed := fn(s)
	if !changed {
		return d
	}
	d.Slides = slices.Clone(d.Slides)
	d.Slides[d.CurrentSlideIndex] = next
	return d
}

func replaceElement(d document.Document, id string, fn func(document.Element) (document.Element, bool)) document.Document {
	return editSlide(d, func(s document.Slide) (document.Slide, bool) {
		i, old := s.Find(id)
		if i < 0 {
			return s, false
		}
		next, changed := fn(old)
		if !changed {
			return s, false
		}
		s.Elements = slices.Clone(s.Elements)
		s.Elements[i] = next
		return s, true
	})
}

func editAttrs(d document.Document, id string, fn func(document.Base) document.Base) document.Document {
	return replaceElement(d, id, func(old document.Element) (document.Element, bool) {
		b := old.Attrs()
		next := fn(b)
		if next == b {
			return old, false
		}
		return old.WithAttrs(next), true
	})
}
