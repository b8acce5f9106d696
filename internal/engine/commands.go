package engine

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
)

// DrawCommand is one paint operation for the host renderer, in painter's
// order. Transform maps the element's local box (origin top-left, Width x
// Height) to screen pixels.
type DrawCommand struct {
	Op          string               `json:"op"` // "background", "grid", "text", "shape", "image", "chart"
	ElementID   string               `json:"elementId,omitempty"`
	Transform   []float64            `json:"transform"`
	Width       float64              `json:"width"`
	Height      float64              `json:"height"`
	ZIndex      int                  `json:"zIndex,omitempty"`
	Selected    bool                 `json:"selected,omitempty"`
	Fill        string               `json:"fill,omitempty"`
	Stroke      string               `json:"stroke,omitempty"`
	StrokeWidth float64              `json:"strokeWidth,omitempty"`
	StrokeStyle document.BorderStyle `json:"strokeStyle,omitempty"`
	Opacity     float64              `json:"opacity,omitempty"`
	ShapeType   document.ShapeType   `json:"shapeType,omitempty"`
	Text        string               `json:"text,omitempty"`
	TextStyle   *document.TextStyle  `json:"textStyle,omitempty"`
	Src         string               `json:"src,omitempty"`
	Alt         string               `json:"alt,omitempty"`
	Chart       *document.ChartSpec  `json:"chart,omitempty"`
	GridSize    float64              `json:"gridSize,omitempty"`
}

// paintOrder returns the slide's elements sorted by zIndex. Equal zIndex
// keeps insertion order.
func paintOrder(s document.Slide) []document.Element {
	els := slices.Clone(s.Elements)
	slices.SortStableFunc(els, func(a, b document.Element) int {
		return cmp.Compare(a.Attrs().ZIndex, b.Attrs().ZIndex)
	})
	return els
}

// elementMatrix maps an element's local box into document space.
func elementMatrix(b document.Base) geometry.Matrix2D {
	return geometry.BoxTransform(b.Box(), b.Rotation)
}

// CompileDrawCommands builds the draw list for a slide. view maps document
// space to the screen; gridSize > 0 adds a grid overlay.
func CompileDrawCommands(s document.Slide, view geometry.Matrix2D, selected string, gridSize float64) []DrawCommand {
	commands := make([]DrawCommand, 0, len(s.Elements)+2)
	commands = append(commands, DrawCommand{
		Op:        "background",
		Transform: view.ToSlice(),
		Width:     document.SlideWidth,
		Height:    document.SlideHeight,
		Fill:      s.Background,
		Opacity:   1,
	})
	if gridSize > 0 {
		commands = append(commands, DrawCommand{
			Op:        "grid",
			Transform: view.ToSlice(),
			Width:     document.SlideWidth,
			Height:    document.SlideHeight,
			GridSize:  gridSize,
		})
	}

	for _, el := range paintOrder(s) {
		b := el.Attrs()
		cmd := DrawCommand{
			ElementID: b.ID,
			Transform: view.Multiply(elementMatrix(b)).ToSlice(),
			Width:     b.Size.Width,
			Height:    b.Size.Height,
			ZIndex:    b.ZIndex,
			Selected:  b.ID == selected,
		}
		switch e := el.(type) {
		case document.TextElement:
			style := e.TextStyle
			cmd.Op = "text"
			cmd.Text = e.Content
			cmd.TextStyle = &style
			cmd.Opacity = 1
		case document.ShapeElement:
			cmd.Op = "shape"
			cmd.ShapeType = e.ShapeType
			cmd.Fill = e.FillColor
			cmd.Stroke = e.BorderColor
			cmd.StrokeWidth = e.BorderWidth
			cmd.StrokeStyle = e.BorderStyle
			cmd.Opacity = e.Opacity
			if e.HasText {
				cmd.Text = e.Text
				cmd.TextStyle = e.TextProps
			}
		case document.ImageElement:
			cmd.Op = "image"
			cmd.Src = e.Src
			cmd.Alt = e.Alt
			cmd.Opacity = e.Opacity
		case document.ChartElement:
			spec := e.Spec()
			cmd.Op = "chart"
			cmd.Chart = &spec
			cmd.Opacity = 1
		}
		commands = append(commands, cmd)
	}
	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTest returns the id of the topmost element containing the document
// point p, taking rotation into account, or "".
func HitTest(s document.Slide, p geometry.Position) string {
	els := paintOrder(s)
	for i := len(els) - 1; i >= 0; i-- {
		b := els[i].Attrs()
		local := elementMatrix(b).Invert().Apply(p)
		if (geometry.Rect{Width: b.Size.Width, Height: b.Size.Height}).Contains(local.X, local.Y) {
			return b.ID
		}
	}
	return ""
}

// ElementBounds returns the axis-aligned document-space bounds of an element
// after rotation.
func ElementBounds(b document.Base) geometry.Rect {
	return elementMatrix(b).Bounds(geometry.Rect{Width: b.Size.Width, Height: b.Size.Height})
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geometry.Rect) string {
	data, _ := json.Marshal(r)
	return string(data)
}
