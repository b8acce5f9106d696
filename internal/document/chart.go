package document

import "encoding/json"

type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartArea    ChartType = "area"
	ChartScatter ChartType = "scatter"
)

// DataPoint is a category/value pair, or an x/y pair for scatter charts.
type DataPoint struct {
	Name  string  `json:"name,omitempty"`
	Value float64 `json:"value,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
}

// DefaultChartColors is used when a chart carries no palette.
var DefaultChartColors = []string{"#6750A4", "#7F67BE", "#9A82DB", "#B598F8", "#D0BCFF"}

type ChartElement struct {
	Base
	ChartType  ChartType   `json:"chartType"`
	ChartData  []DataPoint `json:"chartData"`
	Title      string      `json:"title,omitempty"`
	XAxisLabel string      `json:"xAxisLabel,omitempty"`
	YAxisLabel string      `json:"yAxisLabel,omitempty"`
	ShowLegend bool        `json:"showLegend"`
	Colors     []string    `json:"colors"`
}

func (ChartElement) Kind() ElementKind { return KindChart }
func (ChartElement) isElement()        {}

func (e ChartElement) WithAttrs(b Base) Element {
	e.Base = b
	return e
}

// ColorAt cycles through the palette by data point index.
func (e ChartElement) ColorAt(i int) string {
	palette := e.Colors
	if len(palette) == 0 {
		palette = DefaultChartColors
	}
	if i < 0 {
		i = -i
	}
	return palette[i%len(palette)]
}

// ChartSpec is what a chart renderer needs to paint the element.
type ChartSpec struct {
	ChartType  ChartType   `json:"chartType"`
	ChartData  []DataPoint `json:"chartData"`
	Colors     []string    `json:"colors"`
	XAxisLabel string      `json:"xAxisLabel,omitempty"`
	YAxisLabel string      `json:"yAxisLabel,omitempty"`
	Title      string      `json:"title,omitempty"`
	ShowLegend bool        `json:"showLegend"`
}

// Spec resolves one color per data point.
func (e ChartElement) Spec() ChartSpec {
	colors := make([]string, len(e.ChartData))
	for i := range e.ChartData {
		colors[i] = e.ColorAt(i)
	}
	return ChartSpec{
		ChartType:  e.ChartType,
		ChartData:  e.ChartData,
		Colors:     colors,
		XAxisLabel: e.XAxisLabel,
		YAxisLabel: e.YAxisLabel,
		Title:      e.Title,
		ShowLegend: e.ShowLegend,
	}
}

// normalize stores empty data and palettes as nil, the in-memory form of [].
func (e ChartElement) normalize() ChartElement {
	if len(e.ChartData) == 0 {
		e.ChartData = nil
	}
	if len(e.Colors) == 0 {
		e.Colors = nil
	}
	return e
}

func (e ChartElement) MarshalJSON() ([]byte, error) {
	type alias ChartElement
	a := alias(e)
	if a.ChartData == nil {
		a.ChartData = []DataPoint{}
	}
	if a.Colors == nil {
		a.Colors = []string{}
	}
	return json.Marshal(struct {
		Type ElementKind `json:"type"`
		alias
	}{KindChart, a})
}
