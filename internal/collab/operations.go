package collab

import (
	"fmt"
	"sync"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/store"
)

// DocumentState holds the authoritative document for a room and numbers
// every applied operation.
type DocumentState struct {
	mu        sync.Mutex
	store     *store.Store
	serverSeq int64
}

func NewDocumentState(s *store.Store) *DocumentState {
	return &DocumentState{store: s}
}

// Snapshot returns the current document and the sequence number it reflects.
func (ds *DocumentState) Snapshot() (document.Document, int64) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.store.Document(), ds.serverSeq
}

// ApplyOperation applies op and returns its resolved form with the assigned
// server sequence. Operations on missing targets are accepted and numbered
// so every client observes the same sequence.
func (ds *DocumentState) ApplyOperation(op Operation) (Operation, int64, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.applyLocked(op)
}

// applyLocked applies the operation without locking (caller must hold lock)
func (ds *DocumentState) applyLocked(op Operation) (Operation, int64, error) {
	resolved, err := ds.store.Apply(op.Operation)
	if err != nil {
		return op, 0, fmt.Errorf("apply %s: %w", op.Type, err)
	}
	op.Operation = resolved
	ds.serverSeq++
	return op, ds.serverSeq, nil
}
