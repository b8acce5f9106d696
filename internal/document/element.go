package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/slides/internal/geometry"
)

// ElementKind discriminates the element variants on the wire.
type ElementKind string

const (
	KindText  ElementKind = "text"
	KindShape ElementKind = "shape"
	KindImage ElementKind = "image"
	KindChart ElementKind = "chart"
)

var ErrUnknownElementType = errors.New("unknown element type")

// Base holds the attributes shared by every element kind.
type Base struct {
	ID       string            `json:"id"`
	Position geometry.Position `json:"position"`
	Size     geometry.Size     `json:"size"`
	Rotation float64           `json:"rotation"`
	ZIndex   int               `json:"zIndex"`
}

// Attrs returns the shared attributes. Promoted to every variant.
func (b Base) Attrs() Base { return b }

// Box returns the element's position and size.
func (b Base) Box() geometry.Box {
	return geometry.Box{Position: b.Position, Size: b.Size}
}

// Element is one of TextElement, ShapeElement, ImageElement or ChartElement.
// Values are immutable snapshots: modify by building a new value.
type Element interface {
	Kind() ElementKind
	Attrs() Base
	// WithAttrs returns a copy of the element carrying b.
	WithAttrs(b Base) Element
	isElement()
}

type TextType string

const (
	TextHeading1 TextType = "heading1"
	TextHeading2 TextType = "heading2"
	TextHeading3 TextType = "heading3"
	TextSubtitle TextType = "subtitle"
	TextBody     TextType = "body"
	TextQuote    TextType = "quote"
)

type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

type TextEffect string

const (
	EffectNone     TextEffect = "none"
	EffectShadow   TextEffect = "shadow"
	EffectOutline  TextEffect = "outline"
	EffectGradient TextEffect = "gradient"
	EffectGlow     TextEffect = "glow"
)

// TextStyle is shared by text elements and text embedded in shapes.
type TextStyle struct {
	FontFamily      string     `json:"fontFamily"`
	FontSize        float64    `json:"fontSize"`
	Color           string     `json:"color"`
	Bold            bool       `json:"bold"`
	Italic          bool       `json:"italic"`
	Underline       bool       `json:"underline"`
	Strikethrough   bool       `json:"strikethrough"`
	Alignment       Alignment  `json:"alignment"`
	Effect          TextEffect `json:"effect"`
	EffectIntensity float64    `json:"effectIntensity"`
}

type TextElement struct {
	Base
	TextType TextType `json:"textType"`
	Content  string   `json:"content"`
	TextStyle
}

func (TextElement) Kind() ElementKind { return KindText }
func (TextElement) isElement()        {}

func (e TextElement) WithAttrs(b Base) Element {
	e.Base = b
	return e
}

func (e TextElement) MarshalJSON() ([]byte, error) {
	type alias TextElement
	return json.Marshal(struct {
		Type ElementKind `json:"type"`
		alias
	}{KindText, alias(e)})
}

type ShapeType string

const (
	ShapeRect       ShapeType = "rect"
	ShapeCircle     ShapeType = "circle"
	ShapeTriangle   ShapeType = "triangle"
	ShapeLine       ShapeType = "line"
	ShapeArrowRight ShapeType = "arrow-right"
	ShapeArrowLeft  ShapeType = "arrow-left"
	ShapeArrowUp    ShapeType = "arrow-up"
	ShapeArrowDown  ShapeType = "arrow-down"
	ShapeSolidLine  ShapeType = "solid-line"
	ShapeDashedLine ShapeType = "dashed-line"
	ShapeDottedLine ShapeType = "dotted-line"
	ShapeThickLine  ShapeType = "thick-line"
)

// IsLine reports whether the shape renders as a single stroke.
func (t ShapeType) IsLine() bool {
	switch t {
	case ShapeLine, ShapeSolidLine, ShapeDashedLine, ShapeDottedLine, ShapeThickLine:
		return true
	}
	return false
}

type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

type ShapeElement struct {
	Base
	ShapeType   ShapeType   `json:"shapeType"`
	FillColor   string      `json:"fillColor"`
	BorderColor string      `json:"borderColor"`
	BorderWidth float64     `json:"borderWidth"`
	BorderStyle BorderStyle `json:"borderStyle"`
	Opacity     float64     `json:"opacity"`
	HasText     bool        `json:"hasText"`
	Text        string      `json:"text,omitempty"`
	// TextProps is shared between snapshots; replace it, never write through it.
	TextProps *TextStyle `json:"textProps,omitempty"`
}

func (ShapeElement) Kind() ElementKind { return KindShape }
func (ShapeElement) isElement()        {}

func (e ShapeElement) WithAttrs(b Base) Element {
	e.Base = b
	return e
}

// CarriesText reports whether the shape has editable embedded text.
func (e ShapeElement) CarriesText() bool {
	return e.HasText && e.TextProps != nil
}

func (e ShapeElement) MarshalJSON() ([]byte, error) {
	type alias ShapeElement
	return json.Marshal(struct {
		Type ElementKind `json:"type"`
		alias
	}{KindShape, alias(e)})
}

type ImageElement struct {
	Base
	Src     string  `json:"src"`
	Alt     string  `json:"alt"`
	Opacity float64 `json:"opacity"`
}

func (ImageElement) Kind() ElementKind { return KindImage }
func (ImageElement) isElement()        {}

func (e ImageElement) WithAttrs(b Base) Element {
	e.Base = b
	return e
}

func (e ImageElement) MarshalJSON() ([]byte, error) {
	type alias ImageElement
	return json.Marshal(struct {
		Type ElementKind `json:"type"`
		alias
	}{KindImage, alias(e)})
}

// DecodeElement decodes a single element using its "type" discriminator.
func DecodeElement(data []byte) (Element, error) {
	var probe struct {
		Type ElementKind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode element: %w", err)
	}

	var (
		el  Element
		err error
	)
	switch probe.Type {
	case KindText:
		var e TextElement
		err = json.Unmarshal(data, &e)
		el = e
	case KindShape:
		var e ShapeElement
		err = json.Unmarshal(data, &e)
		el = e
	case KindImage:
		var e ImageElement
		err = json.Unmarshal(data, &e)
		el = e
	case KindChart:
		var e ChartElement
		err = json.Unmarshal(data, &e)
		el = e.normalize()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownElementType, probe.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s element: %w", probe.Type, err)
	}
	return el, nil
}
