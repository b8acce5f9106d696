package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/slides/internal/document"
	"github.com/inamate/slides/internal/persist"
	"github.com/inamate/slides/internal/presets"
	"github.com/inamate/slides/internal/typeid"
)

var (
	ErrNotFound      = errors.New("deck not found")
	ErrForbidden     = errors.New("forbidden")
	ErrNotMember     = errors.New("not a deck member")
	ErrUserNotFound  = errors.New("user not found")
	ErrAlreadyMember = errors.New("already a member")
	ErrRemoveOwner   = errors.New("cannot remove deck owner")
	ErrIDMismatch    = errors.New("snapshot id does not match deck")
	ErrInvalid       = errors.New("invalid snapshot")
)

type Service struct {
	repo    persist.Repository
	presets *presets.Catalog
}

func NewService(repo persist.Repository, catalog *presets.Catalog) *Service {
	if catalog == nil {
		catalog = presets.Default()
	}
	return &Service{repo: repo, presets: catalog}
}

type Deck struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Create makes a deck owned by ownerID and seeds its first snapshot, either
// a blank slide or the sample presentation.
func (s *Service) Create(ctx context.Context, title, ownerID string, sample bool) (*Deck, error) {
	deckID := typeid.NewDeckID()

	d, err := s.repo.CreateDeck(ctx, persist.Deck{ID: deckID, Title: title, OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("create deck: %w", err)
	}

	if err := s.repo.AddMember(ctx, deckID, ownerID, persist.RoleOwner); err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	var doc document.Document
	if sample {
		doc = s.presets.SampleDeck(deckID)
	} else {
		doc = document.New(deckID, typeid.NewSlideID())
	}
	doc.Title = title

	if err := persist.NewDeckSaver(s.repo, deckID).Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toDeck(d), nil
}

func (s *Service) Get(ctx context.Context, deckID, userID string) (*Deck, error) {
	if err := s.CheckMembership(ctx, deckID, userID); err != nil {
		return nil, err
	}

	d, err := s.repo.GetDeck(ctx, deckID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get deck: %w", err)
	}

	return toDeck(d), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Deck, error) {
	rows, err := s.repo.ListDecksForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}

	decks := make([]Deck, len(rows))
	for i, d := range rows {
		decks[i] = *toDeck(d)
	}

	return decks, nil
}

func (s *Service) Delete(ctx context.Context, deckID, userID string) error {
	if err := s.requireOwner(ctx, deckID, userID); err != nil {
		return err
	}
	return s.repo.DeleteDeck(ctx, deckID)
}

func (s *Service) InviteByEmail(ctx context.Context, deckID, ownerID, inviteeEmail string) error {
	if err := s.requireOwner(ctx, deckID, ownerID); err != nil {
		return err
	}

	invitee, err := s.repo.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	err = s.repo.AddMember(ctx, deckID, invitee.ID, persist.RoleEditor)
	if errors.Is(err, persist.ErrDuplicate) {
		return ErrAlreadyMember
	}
	return err
}

func (s *Service) ListMembers(ctx context.Context, deckID, userID string) ([]Member, error) {
	if err := s.CheckMembership(ctx, deckID, userID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListMembers(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(rows))
	for i, m := range rows {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}

	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, deckID, ownerID, targetUserID string) error {
	if err := s.requireOwner(ctx, deckID, ownerID); err != nil {
		return err
	}

	if targetUserID == ownerID {
		return ErrRemoveOwner
	}

	err := s.repo.RemoveMember(ctx, deckID, targetUserID)
	if errors.Is(err, persist.ErrNotFound) {
		return ErrNotMember
	}
	return err
}

func (s *Service) GetLatestSnapshot(ctx context.Context, deckID, userID string) (json.RawMessage, error) {
	if err := s.CheckMembership(ctx, deckID, userID); err != nil {
		return nil, err
	}

	snap, err := s.repo.LatestSnapshot(ctx, deckID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	return snap.Document, nil
}

// Document returns the decoded latest snapshot.
func (s *Service) Document(ctx context.Context, deckID, userID string) (document.Document, error) {
	if err := s.CheckMembership(ctx, deckID, userID); err != nil {
		return document.Document{}, err
	}
	doc, err := persist.LoadDocument(ctx, s.repo, deckID)
	if errors.Is(err, persist.ErrNotFound) {
		return document.Document{}, ErrNotFound
	}
	return doc, err
}

// SaveSnapshot validates data and stores it as the deck's newest snapshot.
func (s *Service) SaveSnapshot(ctx context.Context, deckID, userID string, data []byte) error {
	if err := s.CheckMembership(ctx, deckID, userID); err != nil {
		return err
	}
	doc, err := document.Decode(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if doc.ID != deckID {
		return ErrIDMismatch
	}
	return persist.NewDeckSaver(s.repo, deckID).Save(ctx, doc)
}

// CheckMembership returns ErrNotMember unless userID belongs to the deck.
func (s *Service) CheckMembership(ctx context.Context, deckID, userID string) error {
	_, err := s.repo.GetMember(ctx, deckID, userID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func (s *Service) requireOwner(ctx context.Context, deckID, userID string) error {
	d, err := s.repo.GetDeck(ctx, deckID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get deck: %w", err)
	}
	if d.OwnerID != userID {
		return ErrForbidden
	}
	return nil
}

func toDeck(d persist.Deck) *Deck {
	return &Deck{
		ID:        d.ID,
		Title:     d.Title,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
