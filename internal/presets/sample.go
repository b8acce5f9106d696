package presets

import (
	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
	"github.com/inamate/slides/internal/typeid"
)

// SampleDeck builds a small three-slide deck exercising every element kind.
func (c *Catalog) SampleDeck(deckID string) document.Document {
	doc := document.New(deckID, typeid.NewSlideID())
	doc.Title = "Sample Presentation"

	title, _ := c.NewText(typeid.NewElementID(), document.TextHeading1, geometry.Position{X: 40, Y: 40})
	title.Content = "Quarterly Review"
	title.ZIndex = 1
	subtitle, _ := c.NewText(typeid.NewElementID(), document.TextSubtitle, geometry.Position{X: 40, Y: 104})
	subtitle.ZIndex = 2
	doc.Slides[0].Elements = []document.Element{title, subtitle}

	second := document.NewSlide(typeid.NewSlideID())
	rect := c.NewShape(typeid.NewElementID(), document.ShapeRect, geometry.Position{X: 80, Y: 120})
	rect.ZIndex = 1
	circle := c.NewShape(typeid.NewElementID(), document.ShapeCircle, geometry.Position{X: 240, Y: 120})
	circle.FillColor = "#F59E0B"
	circle.ZIndex = 2
	labelled := c.NewShape(typeid.NewElementID(), document.ShapeTriangle, geometry.Position{X: 400, Y: 120})
	labelled.HasText = true
	labelled.Text = "Add text"
	labelled.TextProps = &document.TextStyle{
		FontFamily: c.Text.Style.FontFamily,
		FontSize:   14,
		Color:      "#FFFFFF",
		Alignment:  document.AlignCenter,
		Effect:     document.EffectNone,
	}
	labelled.ZIndex = 3
	second.Elements = []document.Element{rect, circle, labelled}

	third := document.NewSlide(typeid.NewSlideID())
	third.Background = "#F5F5F5"
	chart := c.NewChart(typeid.NewElementID(), document.ChartBar, nil)
	chart.ZIndex = 1
	third.Elements = []document.Element{chart}

	doc.Slides = append(doc.Slides, second, third)
	return doc
}
