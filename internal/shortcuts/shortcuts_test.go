package shortcuts

import (
	"testing"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
	"github.com/inamate/slides/internal/store"
)

func setup(t *testing.T) (*store.Store, *Handler, string) {
	t.Helper()
	s := store.New(document.New("deck_1", "slide_1"))
	id := s.AddElement(document.ImageElement{
		Base:    document.Base{Position: geometry.Position{X: 100, Y: 100}, Size: geometry.Size{Width: 50, Height: 50}},
		Src:     "/a.png",
		Opacity: 1,
	})
	return s, New(s, nil), id
}

func position(t *testing.T, s *store.Store, id string) geometry.Position {
	t.Helper()
	el, ok := s.Element(id)
	if !ok {
		t.Fatalf("element %s missing", id)
	}
	return el.Attrs().Position
}

func TestArrowNudges(t *testing.T) {
	s, h, id := setup(t)
	h.HandleKey(KeyEvent{Key: "ArrowRight"})
	h.HandleKey(KeyEvent{Key: "ArrowDown", Shift: true})
	h.HandleKey(KeyEvent{Key: "ArrowLeft"})
	h.HandleKey(KeyEvent{Key: "ArrowUp"})
	if got := position(t, s, id); got != (geometry.Position{X: 100, Y: 109}) {
		t.Fatalf("position = %+v", got)
	}
}

func TestIgnoredInTextInput(t *testing.T) {
	s, h, id := setup(t)
	if h.HandleKey(KeyEvent{Key: "Backspace", InTextInput: true}) {
		t.Fatal("handled key inside text input")
	}
	if _, ok := s.Element(id); !ok {
		t.Fatal("element removed while typing")
	}
}

func TestDeleteAndDuplicate(t *testing.T) {
	s, h, id := setup(t)
	if !h.HandleKey(KeyEvent{Key: "d", Meta: true}) {
		t.Fatal("cmd+d not handled")
	}
	dup := s.Selected()
	if dup == id || len(s.CurrentSlide().Elements) != 2 {
		t.Fatal("duplicate not created and selected")
	}
	h.HandleKey(KeyEvent{Key: "Delete"})
	if _, ok := s.Element(dup); ok {
		t.Fatal("delete did not remove selection")
	}
	if h.HandleKey(KeyEvent{Key: "Delete"}) {
		t.Fatal("delete with empty selection should not be handled")
	}
}

func TestStackingShortcuts(t *testing.T) {
	s, h, id := setup(t)
	other := s.AddElement(document.ImageElement{Base: document.Base{Size: geometry.Size{Width: 20, Height: 20}}})
	s.Select(id)

	h.HandleKey(KeyEvent{Key: "}", Ctrl: true, Shift: true})
	el, _ := s.Element(id)
	if el.Attrs().ZIndex != 3 {
		t.Fatalf("front zIndex = %d", el.Attrs().ZIndex)
	}
	s.Select(other)
	h.HandleKey(KeyEvent{Key: "[", Ctrl: true, Shift: true})
	el, _ = s.Element(other)
	if el.Attrs().ZIndex != 1 {
		t.Fatalf("back zIndex = %d", el.Attrs().ZIndex)
	}
}

func TestGridToggles(t *testing.T) {
	_, h, _ := setup(t)
	h.HandleKey(KeyEvent{Key: "g", Ctrl: true})
	h.HandleKey(KeyEvent{Key: "G", Ctrl: true, Shift: true})
	got := h.Settings()
	if !got.ShowGrid || !got.SnapToGrid {
		t.Fatalf("settings = %+v", got)
	}
	h.HandleKey(KeyEvent{Key: "g", Meta: true})
	if h.Settings().ShowGrid {
		t.Fatal("second toggle should hide the grid")
	}
}
