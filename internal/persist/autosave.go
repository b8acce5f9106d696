package persist

import (
	"context"
	"log/slog"
	"sync"

	"github.com/inamate/slides/internal/document"
)

// Autosaver hands snapshots to a Saver from a single goroutine. Only the
// latest pending snapshot is kept, so a slow backend sees fewer, newer writes
// and never blocks the caller. Save failures are logged and dropped.
type Autosaver struct {
	saver  Saver
	logger *slog.Logger

	mu      sync.Mutex
	pending *document.Document

	wake chan struct{}
	done chan struct{}
}

func NewAutosaver(s Saver, logger *slog.Logger) *Autosaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{
		saver:  s,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Persist implements store.Persister.
func (a *Autosaver) Persist(doc document.Document) {
	a.mu.Lock()
	a.pending = &doc
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Run drains snapshots until ctx is cancelled, then writes whatever is still
// pending and returns.
func (a *Autosaver) Run(ctx context.Context) {
	defer close(a.done)
	for {
		select {
		case <-ctx.Done():
			a.flush(context.WithoutCancel(ctx))
			return
		case <-a.wake:
			a.flush(ctx)
		}
	}
}

// Done is closed once Run has returned.
func (a *Autosaver) Done() <-chan struct{} { return a.done }

func (a *Autosaver) flush(ctx context.Context) {
	a.mu.Lock()
	doc := a.pending
	a.pending = nil
	a.mu.Unlock()

	if doc == nil {
		return
	}
	if err := a.saver.Save(ctx, *doc); err != nil {
		a.logger.Error("autosave failed", "deck", doc.ID, "error", err)
		return
	}
	a.logger.Debug("autosaved", "deck", doc.ID, "slides", len(doc.Slides))
}
