package persist

import (
	"context"
	"fmt"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/typeid"
)

// DeckSaver appends snapshots of one deck to a Repository and keeps the deck
// row's title in step with the document title.
type DeckSaver struct {
	repo   Repository
	deckID string
}

func NewDeckSaver(repo Repository, deckID string) *DeckSaver {
	return &DeckSaver{repo: repo, deckID: deckID}
}

func (s *DeckSaver) Save(ctx context.Context, doc document.Document) error {
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}
	if _, err := s.repo.SaveSnapshot(ctx, typeid.NewSnapshotID(), s.deckID, data); err != nil {
		return fmt.Errorf("save snapshot for %s: %w", s.deckID, err)
	}
	if err := s.repo.RenameDeck(ctx, s.deckID, doc.Title); err != nil {
		return fmt.Errorf("rename deck %s: %w", s.deckID, err)
	}
	return nil
}

// LoadDocument decodes the latest snapshot of a deck.
func LoadDocument(ctx context.Context, repo Repository, deckID string) (document.Document, error) {
	snap, err := repo.LatestSnapshot(ctx, deckID)
	if err != nil {
		return document.Document{}, err
	}
	doc, err := document.Decode(snap.Document)
	if err != nil {
		return document.Document{}, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return doc, nil
}
