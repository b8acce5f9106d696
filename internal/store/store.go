package store

import (
	"log/slog"
	"sync"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/geometry"
	"github.com/inamate/slides/internal/typeid"
)

// Persister receives every new snapshot. Implementations must not block and
// handle their own failures.
type Persister interface {
	Persist(doc document.Document)
}

type Option func(*Store)

// WithPersister registers the collaborator notified after each mutation.
func WithPersister(p Persister) Option {
	return func(s *Store) { s.persister = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDs overrides slide and element id generation.
func WithIDs(slideID, elementID func() string) Option {
	return func(s *Store) {
		s.newSlideID = slideID
		s.newElementID = elementID
	}
}

// Store holds the authoritative document snapshot plus the ephemeral
// selection. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	doc       document.Document
	selected  string
	version   int64
	persister Persister
	logger    *slog.Logger

	newSlideID   func() string
	newElementID func() string
}

// New creates a store around doc. An invalid doc is replaced by a blank one.
func New(doc document.Document, opts ...Option) *Store {
	s := &Store{
		logger:       slog.Default(),
		newSlideID:   typeid.NewSlideID,
		newElementID: typeid.NewElementID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := doc.Validate(); err != nil {
		s.logger.Warn("store: replacing invalid document", "error", err)
		doc = document.NewDefault()
	}
	s.doc = doc
	return s
}

// Document returns the current snapshot. Callers must not mutate it.
func (s *Store) Document() document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Version counts effective mutations since the store was created.
func (s *Store) Version() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Selected returns the selected element id, or "".
func (s *Store) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// CurrentSlide returns the active slide.
func (s *Store) CurrentSlide() document.Slide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slide, _ := s.doc.CurrentSlide()
	return slide
}

// Element looks up an element on the active slide.
func (s *Store) Element(id string) (document.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slide, _ := s.doc.CurrentSlide()
	_, el := slide.Find(id)
	return el, el != nil
}

// Select marks an element on the active slide as selected. An empty or
// unknown id clears the selection.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slide, _ := s.doc.CurrentSlide()
	if i, _ := slide.Find(id); i < 0 {
		id = ""
	}
	s.selected = id
}

// Replace swaps in a whole new document, e.g. after loading a snapshot.
func (s *Store) Replace(doc document.Document) {
	if err := doc.Validate(); err != nil {
		s.logger.Warn("store: ignoring invalid replacement", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
	s.commitLocked(doc, true)
}

func (s *Store) AddSlide() string {
	id := s.newSlideID()
	s.mutate(func(d document.Document) document.Document { return AddSlide(d, id) })
	return id
}

func (s *Store) RemoveSlide(slideID string) {
	s.mutate(func(d document.Document) document.Document { return RemoveSlide(d, slideID) })
}

func (s *Store) ReorderSlides(src, dst int) {
	s.mutate(func(d document.Document) document.Document { return ReorderSlides(d, src, dst) })
}

func (s *Store) UpdateSlideBackground(slideID, background string) {
	s.mutate(func(d document.Document) document.Document { return UpdateSlideBackground(d, slideID, background) })
}

// ChangeSlide switches the active slide and clears the selection. Out of
// range indexes are ignored.
func (s *Store) ChangeSlide(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.doc.Slides) {
		return
	}
	s.selected = ""
	s.commitLocked(ChangeSlide(s.doc, index), false)
}

func (s *Store) UpdateDocumentTitle(title string) {
	s.mutate(func(d document.Document) document.Document { return UpdateDocumentTitle(d, title) })
}

// AddElement adds el to the active slide under a fresh id, selects it and
// returns the id.
func (s *Store) AddElement(el document.Element) string {
	id := s.newElementID()
	s.mu.Lock()
	defer s.mu.Unlock()
	next := AddElement(s.doc, el, id)
	if !s.commitLocked(next, false) {
		return ""
	}
	s.selected = id
	return id
}

func (s *Store) UpdateElement(el document.Element) {
	s.mutate(func(d document.Document) document.Document { return UpdateElement(d, el) })
}

func (s *Store) RemoveElement(id string) {
	s.mutate(func(d document.Document) document.Document { return RemoveElement(d, id) })
}

// DuplicateElement copies an element, selects the copy and returns its id.
// It returns "" when the source does not exist.
func (s *Store) DuplicateElement(id string) string {
	copyID := s.newElementID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.commitLocked(DuplicateElement(s.doc, id, copyID), false) {
		return ""
	}
	s.selected = copyID
	return copyID
}

func (s *Store) MoveElement(id string, pos geometry.Position) {
	s.mutate(func(d document.Document) document.Document { return MoveElement(d, id, pos) })
}

func (s *Store) ResizeElement(id string, size geometry.Size) {
	s.mutate(func(d document.Document) document.Document { return ResizeElement(d, id, size) })
}

func (s *Store) RotateElement(id string, rotation float64) {
	s.mutate(func(d document.Document) document.Document { return RotateElement(d, id, rotation) })
}

func (s *Store) BringToFront(id string) {
	s.mutate(func(d document.Document) document.Document { return BringToFront(d, id) })
}

func (s *Store) SendToBack(id string) {
	s.mutate(func(d document.Document) document.Document { return SendToBack(d, id) })
}

func (s *Store) mutate(fn func(document.Document) document.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(fn(s.doc), false)
}

// commitLocked installs next if it differs from the current snapshot, drops a
// selection that no longer resolves and notifies the persister. Caller holds
// the write lock.
func (s *Store) commitLocked(next document.Document, force bool) bool {
	if !force && sameSnapshot(s.doc, next) {
		return false
	}
	s.doc = next
	s.version++
	if s.selected != "" {
		slide, _ := next.CurrentSlide()
		if i, _ := slide.Find(s.selected); i < 0 {
			s.selected = ""
		}
	}
	if s.persister != nil {
		s.persister.Persist(next)
	}
	return true
}

// sameSnapshot reports whether a transition returned its input untouched.
// Transitions always copy the slide list before changing any slide.
func sameSnapshot(a, b document.Document) bool {
	if a.ID != b.ID || a.Title != b.Title || a.CurrentSlideIndex != b.CurrentSlideIndex || len(a.Slides) != len(b.Slides) {
		return false
	}
	return len(a.Slides) == 0 || &a.Slides[0] == &b.Slides[0]
}
