// Package presets holds the default attributes for elements dropped onto a
// slide, loaded from an embedded YAML catalog.
package presets

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
)

//go:embed presets.yaml
var defaultCatalog []byte

type box struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func (b box) size() geometry.Size { return geometry.Size{Width: b.Width, Height: b.Height} }

type point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type ShapePreset struct {
	Size        box     `yaml:"size"`
	FillColor   string  `yaml:"fillColor"`
	BorderColor string  `yaml:"borderColor"`
	BorderWidth float64 `yaml:"borderWidth"`
	BorderStyle string  `yaml:"borderStyle"`
	Opacity     float64 `yaml:"opacity"`
}

type TextStylePreset struct {
	FontFamily      string  `yaml:"fontFamily"`
	Color           string  `yaml:"color"`
	Alignment       string  `yaml:"alignment"`
	Effect          string  `yaml:"effect"`
	EffectIntensity float64 `yaml:"effectIntensity"`
}

type TextKindPreset struct {
	FontSize float64 `yaml:"fontSize"`
	Content  string  `yaml:"content"`
	Bold     bool    `yaml:"bold"`
	Italic   bool    `yaml:"italic"`
}

type TextPreset struct {
	Size  box                       `yaml:"size"`
	Style TextStylePreset           `yaml:"style"`
	Kinds map[string]TextKindPreset `yaml:"kinds"`
}

type ImagePreset struct {
	Size    box     `yaml:"size"`
	Opacity float64 `yaml:"opacity"`
}

type dataPoint struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
}

type ChartPreset struct {
	Position   point                  `yaml:"position"`
	Size       box                    `yaml:"size"`
	XAxisLabel string                 `yaml:"xAxisLabel"`
	YAxisLabel string                 `yaml:"yAxisLabel"`
	ShowLegend bool                   `yaml:"showLegend"`
	Colors     []string               `yaml:"colors"`
	Data       map[string][]dataPoint `yaml:"data"`
}

// Catalog is the full set of element presets.
type Catalog struct {
	Shape ShapePreset `yaml:"shape"`
	Text  TextPreset  `yaml:"text"`
	Image ImagePreset `yaml:"image"`
	Chart ChartPreset `yaml:"chart"`
}

// Parse reads a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(c.Text.Kinds) == 0 {
		return nil, fmt.Errorf("parse presets: no text kinds defined")
	}
	return &c, nil
}

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(defaultCatalog)
})

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return c
}

// NewShape builds a shape of the given kind at pos.
func (c *Catalog) NewShape(id string, t document.ShapeType, pos geometry.Position) document.ShapeElement {
	p := c.Shape
	return document.ShapeElement{
		Base:        document.Base{ID: id, Position: pos, Size: p.Size.size()},
		ShapeType:   t,
		FillColor:   p.FillColor,
		BorderColor: p.BorderColor,
		BorderWidth: p.BorderWidth,
		BorderStyle: document.BorderStyle(p.BorderStyle),
		Opacity:     p.Opacity,
	}
}

// NewText builds a text element of the given kind at pos. Unknown kinds report
// false.
func (c *Catalog) NewText(id string, t document.TextType, pos geometry.Position) (document.TextElement, bool) {
	k, ok := c.Text.Kinds[string(t)]
	if !ok {
		return document.TextElement{}, false
	}
	s := c.Text.Style
	return document.TextElement{
		Base:     document.Base{ID: id, Position: pos, Size: c.Text.Size.size()},
		TextType: t,
		Content:  k.Content,
		TextStyle: document.TextStyle{
			FontFamily:      s.FontFamily,
			FontSize:        k.FontSize,
			Color:           s.Color,
			Bold:            k.Bold,
			Italic:          k.Italic,
			Alignment:       document.Alignment(s.Alignment),
			Effect:          document.TextEffect(s.Effect),
			EffectIntensity: s.EffectIntensity,
		},
	}, true
}

// NewImage builds an image element referencing src.
func (c *Catalog) NewImage(id, src, alt string, pos geometry.Position) document.ImageElement {
	return document.ImageElement{
		Base:    document.Base{ID: id, Position: pos, Size: c.Image.Size.size()},
		Src:     src,
		Alt:     alt,
		Opacity: c.Image.Opacity,
	}
}

// NewChart builds a chart with sample data. A nil pos uses the catalog default.
func (c *Catalog) NewChart(id string, t document.ChartType, pos *geometry.Position) document.ChartElement {
	p := c.Chart
	at := geometry.Position{X: p.Position.X, Y: p.Position.Y}
	if pos != nil {
		at = *pos
	}
	data := make([]document.DataPoint, 0, len(p.Data[string(t)]))
	for _, d := range p.Data[string(t)] {
		data = append(data, document.DataPoint{Name: d.Name, Value: d.Value, X: d.X, Y: d.Y})
	}
	name := string(t)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return document.ChartElement{
		Base:       document.Base{ID: id, Position: at, Size: p.Size.size()},
		ChartType:  t,
		ChartData:  data,
		Title:      fmt.Sprintf("My %s Chart", name),
		XAxisLabel: p.XAxisLabel,
		YAxisLabel: p.YAxisLabel,
		ShowLegend: p.ShowLegend,
		Colors:     append([]string(nil), p.Colors...),
	}
}
