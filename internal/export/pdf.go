// Package export renders decks to PDF, one page per slide at slide
// resolution (one slide unit per point).
package export

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/inamate/slides/internal/document"
)

// ImageResolver maps an image element's src to a local PNG or JPEG file.
type ImageResolver interface {
	Resolve(src string) (string, bool)
}

type Options struct {
	Images ImageResolver
	// Slides selects slide indexes to export; empty exports all.
	Slides []int
}

var ErrNoSlides = errors.New("no slides selected")

type rgb struct{ r, g, b int }

var (
	black       = rgb{0, 0, 0}
	placeholder = rgb{230, 230, 230}
	axisColor   = rgb{120, 120, 120}
)

// PDF writes doc as a multi-page PDF to w.
func PDF(doc document.Document, w io.Writer, opts Options) error {
	size := gofpdf.SizeType{Wd: document.SlideWidth, Ht: document.SlideHeight}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("slides", false)

	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), images: opts.Images}
	for _, idx := range slideIndexes(len(doc.Slides), opts.Slides) {
		if idx < 0 || idx >= len(doc.Slides) {
			continue
		}
		pdf.AddPageFormat("L", size)
		r.slide(doc.Slides[idx])
		if pdf.Err() {
			return fmt.Errorf("render slide %d: %w", idx, pdf.Error())
		}
	}
	if pdf.PageCount() == 0 {
		return ErrNoSlides
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func slideIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

type renderer struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images ImageResolver
}

func (r *renderer) slide(s document.Slide) {
	if c, ok := parseColor(s.Background); ok {
		r.fill(c)
		r.pdf.Rect(0, 0, document.SlideWidth, document.SlideHeight, "F")
	}

	ordered := slices.Clone(s.Elements)
	slices.SortStableFunc(ordered, func(a, b document.Element) int {
		return cmp.Compare(a.Attrs().ZIndex, b.Attrs().ZIndex)
	})
	for _, el := range ordered {
		r.element(el)
	}
}

func (r *renderer) element(el document.Element) {
	b := el.Attrs()
	if b.Rotation != 0 {
		c := b.Box().Center()
		r.pdf.TransformBegin()
		// gofpdf rotates counter-clockwise.
		r.pdf.TransformRotate(-b.Rotation, c.X, c.Y)
		defer r.pdf.TransformEnd()
	}

	switch e := el.(type) {
	case document.TextElement:
		r.text(b, e.Content, e.TextStyle)
	case document.ShapeElement:
		r.shape(e)
	case document.ImageElement:
		r.image(e)
	case document.ChartElement:
		r.chart(e)
	}
}

func (r *renderer) withAlpha(opacity float64, draw func()) {
	if opacity <= 0 || opacity >= 1 {
		draw()
		return
	}
	r.pdf.SetAlpha(opacity, "Normal")
	draw()
	r.pdf.SetAlpha(1, "Normal")
}

func (r *renderer) shape(e document.ShapeElement) {
	x, y, w, h := e.Position.X, e.Position.Y, e.Size.Width, e.Size.Height
	fill, hasFill := parseColor(e.FillColor)
	stroke, hasStroke := parseColor(e.BorderColor)
	hasStroke = hasStroke && e.BorderWidth > 0

	style := ""
	if hasFill {
		r.fill(fill)
		style += "F"
	}
	if hasStroke {
		r.draw(stroke)
		r.pdf.SetLineWidth(e.BorderWidth)
		style += "D"
		r.dash(e.BorderStyle, e.BorderWidth)
	}

	r.withAlpha(e.Opacity, func() {
		if e.ShapeType.IsLine() {
			r.line(e, fill)
			return
		}
		if style == "" {
			return
		}
		switch e.ShapeType {
		case document.ShapeCircle:
			r.pdf.Ellipse(x+w/2, y+h/2, w/2, h/2, 0, style)
		case document.ShapeTriangle:
			r.pdf.Polygon([]gofpdf.PointType{{X: x + w/2, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, style)
		case document.ShapeArrowRight, document.ShapeArrowLeft, document.ShapeArrowUp, document.ShapeArrowDown:
			r.pdf.Polygon(arrowPoints(e.ShapeType, x, y, w, h), style)
		default:
			r.pdf.Rect(x, y, w, h, style)
		}
	})
	r.pdf.SetDashPattern(nil, 0)

	if e.CarriesText() && e.Text != "" {
		r.text(e.Base, e.Text, *e.TextProps)
	}
}

// line draws the line shapes as a horizontal stroke through the box centre.
func (r *renderer) line(e document.ShapeElement, fill rgb) {
	width := e.BorderWidth
	switch e.ShapeType {
	case document.ShapeThickLine:
		width = max(width, 4)
	case document.ShapeDashedLine:
		r.pdf.SetDashPattern([]float64{6, 4}, 0)
	case document.ShapeDottedLine:
		r.pdf.SetDashPattern([]float64{1, 3}, 0)
	}
	if width <= 0 {
		width = 2
	}
	r.draw(fill)
	r.pdf.SetLineWidth(width)
	cy := e.Position.Y + e.Size.Height/2
	r.pdf.Line(e.Position.X, cy, e.Position.X+e.Size.Width, cy)
}

func arrowPoints(t document.ShapeType, x, y, w, h float64) []gofpdf.PointType {
	// Right-pointing arrow in unit space, rotated per direction.
	unit := [][2]float64{{0, 0.3}, {0.6, 0.3}, {0.6, 0}, {1, 0.5}, {0.6, 1}, {0.6, 0.7}, {0, 0.7}}
	pts := make([]gofpdf.PointType, len(unit))
	for i, p := range unit {
		u, v := p[0], p[1]
		switch t {
		case document.ShapeArrowLeft:
			u = 1 - u
		case document.ShapeArrowDown:
			u, v = v, u
		case document.ShapeArrowUp:
			u, v = v, 1-u
		}
		pts[i] = gofpdf.PointType{X: x + u*w, Y: y + v*h}
	}
	return pts
}

func (r *renderer) dash(style document.BorderStyle, width float64) {
	switch style {
	case document.BorderDashed:
		r.pdf.SetDashPattern([]float64{width * 3, width * 2}, 0)
	case document.BorderDotted:
		r.pdf.SetDashPattern([]float64{width, width}, 0)
	default:
		r.pdf.SetDashPattern(nil, 0)
	}
}

func (r *renderer) text(b document.Base, content string, st document.TextStyle) {
	size := st.FontSize
	if size <= 0 {
		size = 16
	}
	fontStyle := ""
	if st.Bold {
		fontStyle += "B"
	}
	if st.Italic {
		fontStyle += "I"
	}
	if st.Underline {
		fontStyle += "U"
	}
	c, ok := parseColor(st.Color)
	if !ok {
		c = black
	}

	r.pdf.SetFont(fontFamily(st.FontFamily), fontStyle, size)
	r.pdf.SetTextColor(c.r, c.g, c.b)
	r.pdf.ClipRect(b.Position.X, b.Position.Y, b.Size.Width, b.Size.Height, false)
	r.pdf.SetXY(b.Position.X, b.Position.Y)
	r.pdf.MultiCell(b.Size.Width, size*1.2, r.tr(content), "", alignCode(st.Alignment), false)
	r.pdf.ClipEnd()
}

func (r *renderer) image(e document.ImageElement) {
	x, y, w, h := e.Position.X, e.Position.Y, e.Size.Width, e.Size.Height
	if r.images != nil {
		if path, ok := r.images.Resolve(e.Src); ok {
			r.withAlpha(e.Opacity, func() {
				r.pdf.ImageOptions(path, x, y, w, h, false, gofpdf.ImageOptions{ReadDpi: false}, 0, "")
			})
			if !r.pdf.Err() {
				return
			}
			r.pdf.ClearError()
		}
	}

	r.fill(placeholder)
	r.pdf.Rect(x, y, w, h, "F")
	if e.Alt != "" {
		r.text(e.Base, e.Alt, document.TextStyle{FontSize: 12, Color: "#666666", Alignment: document.AlignCenter})
	}
}

func (r *renderer) chart(e document.ChartElement) {
	spec := e.Spec()
	x, y, w, h := e.Position.X, e.Position.Y, e.Size.Width, e.Size.Height

	top := y
	if spec.Title != "" {
		r.pdf.SetFont("Helvetica", "B", 11)
		r.pdf.SetTextColor(0, 0, 0)
		r.pdf.SetXY(x, y)
		r.pdf.CellFormat(w, 16, r.tr(spec.Title), "", 0, "C", false, 0, "")
		top += 18
	}
	bottom := y + h - 16
	if spec.ShowLegend {
		bottom -= 14
	}
	plot := struct{ x, y, w, h float64 }{x + 28, top, w - 36, bottom - top}
	if plot.w <= 0 || plot.h <= 0 || len(spec.ChartData) == 0 {
		return
	}

	if spec.ChartType == document.ChartPie {
		r.pie(spec, plot.x+plot.w/2, plot.y+plot.h/2, min(plot.w, plot.h)/2)
	} else {
		r.draw(axisColor)
		r.pdf.SetLineWidth(0.75)
		r.pdf.Line(plot.x, plot.y, plot.x, plot.y+plot.h)
		r.pdf.Line(plot.x, plot.y+plot.h, plot.x+plot.w, plot.y+plot.h)
		r.series(spec, plot.x, plot.y, plot.w, plot.h)
	}

	r.pdf.SetFont("Helvetica", "", 8)
	r.pdf.SetTextColor(axisColor.r, axisColor.g, axisColor.b)
	if spec.XAxisLabel != "" {
		r.pdf.SetXY(plot.x, plot.y+plot.h+2)
		r.pdf.CellFormat(plot.w, 10, r.tr(spec.XAxisLabel), "", 0, "C", false, 0, "")
	}
	if spec.YAxisLabel != "" {
		r.pdf.TransformBegin()
		r.pdf.TransformRotate(90, x+8, plot.y+plot.h/2)
		r.pdf.Text(x+8-r.pdf.GetStringWidth(spec.YAxisLabel)/2, plot.y+plot.h/2, r.tr(spec.YAxisLabel))
		r.pdf.TransformEnd()
	}
	if spec.ShowLegend {
		r.legend(spec, x+8, y+h-12)
	}
}

func (r *renderer) series(spec document.ChartSpec, px, py, pw, ph float64) {
	data := spec.ChartData
	if spec.ChartType == document.ChartScatter {
		maxX, maxY := 0.0, 0.0
		for _, d := range data {
			maxX = max(maxX, d.X)
			maxY = max(maxY, d.Y)
		}
		if maxX <= 0 || maxY <= 0 {
			return
		}
		for i, d := range data {
			r.fill(mustColor(spec.Colors[i]))
			r.pdf.Circle(px+d.X/maxX*pw, py+ph-d.Y/maxY*ph, 3, "F")
		}
		return
	}

	peak := 0.0
	for _, d := range data {
		peak = max(peak, d.Value)
	}
	if peak <= 0 {
		return
	}
	step := pw / float64(len(data))
	pointAt := func(i int) gofpdf.PointType {
		return gofpdf.PointType{X: px + step*(float64(i)+0.5), Y: py + ph - data[i].Value/peak*ph}
	}

	switch spec.ChartType {
	case document.ChartBar:
		for i, d := range data {
			bh := d.Value / peak * ph
			r.fill(mustColor(spec.Colors[i]))
			r.pdf.Rect(px+step*float64(i)+step*0.15, py+ph-bh, step*0.7, bh, "F")
		}
	case document.ChartArea:
		pts := []gofpdf.PointType{{X: pointAt(0).X, Y: py + ph}}
		for i := range data {
			pts = append(pts, pointAt(i))
		}
		pts = append(pts, gofpdf.PointType{X: pointAt(len(data) - 1).X, Y: py + ph})
		r.fill(mustColor(spec.Colors[0]))
		r.withAlpha(0.4, func() { r.pdf.Polygon(pts, "F") })
		fallthrough
	case document.ChartLine:
		r.draw(mustColor(spec.Colors[0]))
		r.pdf.SetLineWidth(1.5)
		for i := 1; i < len(data); i++ {
			a, b := pointAt(i-1), pointAt(i)
			r.pdf.Line(a.X, a.Y, b.X, b.Y)
		}
	}
}

func (r *renderer) pie(spec document.ChartSpec, cx, cy, radius float64) {
	total := 0.0
	for _, d := range spec.ChartData {
		total += max(d.Value, 0)
	}
	if total <= 0 {
		return
	}
	start := -90.0
	for i, d := range spec.ChartData {
		sweep := max(d.Value, 0) / total * 360
		if sweep == 0 {
			continue
		}
		pts := []gofpdf.PointType{{X: cx, Y: cy}}
		steps := max(2, int(math.Ceil(sweep/5)))
		for s := 0; s <= steps; s++ {
			a := (start + sweep*float64(s)/float64(steps)) * math.Pi / 180
			pts = append(pts, gofpdf.PointType{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)})
		}
		r.fill(mustColor(spec.Colors[i]))
		r.pdf.Polygon(pts, "F")
		start += sweep
	}
}

func (r *renderer) legend(spec document.ChartSpec, x, y float64) {
	r.pdf.SetFont("Helvetica", "", 8)
	r.pdf.SetTextColor(0, 0, 0)
	for i, d := range spec.ChartData {
		label := d.Name
		if label == "" {
			label = strconv.Itoa(i + 1)
		}
		r.fill(mustColor(spec.Colors[i]))
		r.pdf.Rect(x, y, 8, 8, "F")
		r.pdf.Text(x+11, y+7, r.tr(label))
		x += 16 + r.pdf.GetStringWidth(label)
	}
}

func (r *renderer) fill(c rgb) { r.pdf.SetFillColor(c.r, c.g, c.b) }
func (r *renderer) draw(c rgb) { r.pdf.SetDrawColor(c.r, c.g, c.b) }

func fontFamily(f string) string {
	f = strings.ToLower(f)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"):
		return "Courier"
	case strings.Contains(f, "serif") && !strings.Contains(f, "sans"),
		strings.Contains(f, "times"), strings.Contains(f, "georgia"):
		return "Times"
	default:
		return "Helvetica"
	}
}

func alignCode(a document.Alignment) string {
	switch a {
	case document.AlignCenter:
		return "C"
	case document.AlignRight:
		return "R"
	case document.AlignJustify:
		return "J"
	default:
		return "L"
	}
}

// parseColor accepts #rgb and #rrggbb. Anything else, including
// "transparent", reports false.
func parseColor(s string) (rgb, bool) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return rgb{}, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

func mustColor(s string) rgb {
	if c, ok := parseColor(s); ok {
		return c
	}
	return black
}
