package document

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/inamate/slides/internal/geometry"
)

func sampleDocument() Document {
	doc := New("deck_1", "slide_1")
	doc.Slides[0].Elements = []Element{
		TextElement{
			Base:     Base{ID: "el_text", Position: geometry.Position{X: 10, Y: 20}, Size: geometry.Size{Width: 300, Height: 50}, ZIndex: 1},
			TextType: TextHeading1,
			Content:  "Hello",
			TextStyle: TextStyle{
				FontFamily: "font-roboto", FontSize: 32, Color: "#000000", Bold: true,
				Alignment: AlignLeft, Effect: EffectNone, EffectIntensity: 50,
			},
		},
		ShapeElement{
			Base:      Base{ID: "el_shape", Size: geometry.Size{Width: 100, Height: 100}, Rotation: 45, ZIndex: 2},
			ShapeType: ShapeArrowRight, FillColor: "#00639D", BorderColor: "#000000",
			BorderWidth: 1, BorderStyle: BorderDashed, Opacity: 0.5,
			HasText: true, Text: "Go",
			TextProps: &TextStyle{FontSize: 14, Alignment: AlignCenter, Effect: EffectGlow},
		},
		ImageElement{
			Base: Base{ID: "el_image", Size: geometry.Size{Width: 200, Height: 100}, ZIndex: 3},
			Src:  "/assets/a.png", Alt: "logo", Opacity: 1,
		},
		ChartElement{
			Base:      Base{ID: "el_chart", Size: geometry.Size{Width: 400, Height: 300}, ZIndex: 4},
			ChartType: ChartScatter,
			ChartData: []DataPoint{{Name: "A", X: 1, Y: 2}, {Name: "B", X: 3, Y: 4}},
			Title:     "Spread", ShowLegend: true, Colors: []string{"#111111"},
		},
	}
	return doc
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	doc := sampleDocument()
	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	again, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatalf("round trip changed snapshot:\n%s\n%s", data, again)
	}

	shape, ok := decoded.Slides[0].Elements[1].(ShapeElement)
	if !ok {
		t.Fatalf("element 1 decoded as %T", decoded.Slides[0].Elements[1])
	}
	if shape.TextProps == nil || shape.TextProps.Effect != EffectGlow || shape.Rotation != 45 {
		t.Fatalf("shape lost fields: %+v", shape)
	}
	if _, ok := decoded.Slides[0].Elements[3].(ChartElement); !ok {
		t.Fatalf("element 3 decoded as %T", decoded.Slides[0].Elements[3])
	}
}

func TestDecodeEncodeIsIdentity(t *testing.T) {
	withEmptyChart := New("deck_2", "slide_1")
	withEmptyChart.Slides[0].Elements = []Element{
		ChartElement{
			Base:      Base{ID: "el_chart", Size: geometry.Size{Width: 400, Height: 300}, ZIndex: 1},
			ChartType: ChartBar,
		},
	}
	withEmptySlide := sampleDocument()
	withEmptySlide.Slides = append(withEmptySlide.Slides, Slide{ID: "slide_2", Background: DefaultBackground})

	cases := map[string]Document{
		"sample":           sampleDocument(),
		"blank":            New("deck_3", "slide_1"),
		"chart nil colors": withEmptyChart,
		"nil elements":     withEmptySlide,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(doc)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, doc) {
				t.Errorf("round trip changed document:\ngot  %#v\nwant %#v", got, doc)
			}
		})
	}
}

func TestIsCorrupt(t *testing.T) {
	for name, data := range map[string]string{
		"syntax":       `{"id":`,
		"schema":       `{"id":"x","slides":[]}`,
		"invariant":    `{"id":"x","title":"t","currentSlideIndex":0,"slides":[{"id":"s","background":"#fff","elements":[]},{"id":"s","background":"#fff","elements":[]}]}`,
		"unknown kind": `{"id":"x","title":"t","currentSlideIndex":0,"slides":[{"id":"s","background":"#fff","elements":[{"type":"video","id":"e","position":{"x":0,"y":0},"size":{"width":1,"height":1},"rotation":0,"zIndex":0}]}]}`,
	} {
		if _, err := Decode([]byte(data)); !IsCorrupt(err) {
			t.Errorf("%s: IsCorrupt(%v) = false", name, err)
		}
	}
	if IsCorrupt(errors.New("connection refused")) {
		t.Error("transport error reported as corrupt")
	}
}

func TestEncodeCarriesDiscriminator(t *testing.T) {
	data, err := Encode(sampleDocument())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type":"text"`, `"type":"shape"`, `"type":"image"`, `"type":"chart"`, `"zIndex":4`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("snapshot missing %s", want)
		}
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":      `{`,
		"no slides":     `{"id":"d","title":"t","slides":[],"currentSlideIndex":0}`,
		"index range":   `{"id":"d","title":"t","slides":[{"id":"s","elements":[],"background":"#FFFFFF"}],"currentSlideIndex":3}`,
		"unknown type":  `{"id":"d","title":"t","slides":[{"id":"s","elements":[{"type":"video","id":"e","position":{"x":0,"y":0},"size":{"width":20,"height":20},"rotation":0,"zIndex":1}],"background":"#FFFFFF"}],"currentSlideIndex":0}`,
		"duplicate ids": `{"id":"d","title":"t","slides":[{"id":"s","elements":[{"type":"image","id":"e","position":{"x":0,"y":0},"size":{"width":20,"height":20},"rotation":0,"zIndex":1,"src":"","alt":"","opacity":1},{"type":"image","id":"e","position":{"x":0,"y":0},"size":{"width":20,"height":20},"rotation":0,"zIndex":2,"src":"","alt":"","opacity":1}],"background":"#FFFFFF"}],"currentSlideIndex":0}`,
		"bad opacity":   `{"id":"d","title":"t","slides":[{"id":"s","elements":[{"type":"image","id":"e","position":{"x":0,"y":0},"size":{"width":20,"height":20},"rotation":0,"zIndex":1,"src":"","alt":"","opacity":4}],"background":"#FFFFFF"}],"currentSlideIndex":0}`,
	}
	for name, in := range cases {
		if _, err := Decode([]byte(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	_, err := Decode([]byte(`{"id":"d","title":"t","slides":[{"id":"s","elements":[],"background":"#FFFFFF"},{"id":"s","elements":[],"background":"#FFFFFF"}],"currentSlideIndex":0}`))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("duplicate slide ids: got %v", err)
	}
}

func TestLoadFallsBackToDefault(t *testing.T) {
	for _, in := range [][]byte{nil, []byte(`{"garbage":true}`)} {
		doc := Load(in, nil)
		if doc.Title != DefaultTitle || len(doc.Slides) != 1 || doc.CurrentSlideIndex != 0 {
			t.Fatalf("fallback document = %+v", doc)
		}
		if doc.Slides[0].Background != DefaultBackground || len(doc.Slides[0].Elements) != 0 {
			t.Fatalf("fallback slide = %+v", doc.Slides[0])
		}
	}

	data, _ := Encode(sampleDocument())
	if doc := Load(data, nil); doc.ID != "deck_1" {
		t.Fatalf("valid snapshot replaced: %+v", doc)
	}
}

func TestZIndexBounds(t *testing.T) {
	s := sampleDocument().Slides[0]
	if s.MaxZIndex() != 4 || s.MinZIndex() != 1 {
		t.Fatalf("max=%d min=%d", s.MaxZIndex(), s.MinZIndex())
	}
	empty := NewSlide("x")
	if empty.MaxZIndex() != 0 || empty.MinZIndex() != 0 {
		t.Fatal("empty slide bounds should be 0")
	}
}

func TestChartColorsCycle(t *testing.T) {
	c := ChartElement{
		ChartData: make([]DataPoint, 5),
		Colors:    []string{"#a", "#b"},
	}
	spec := c.Spec()
	want := []string{"#a", "#b", "#a", "#b", "#a"}
	for i, w := range want {
		if spec.Colors[i] != w {
			t.Fatalf("color %d = %s, want %s", i, spec.Colors[i], w)
		}
	}
	if (ChartElement{}).ColorAt(6) != DefaultChartColors[1] {
		t.Fatal("empty palette should fall back to defaults")
	}
}
