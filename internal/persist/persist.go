// Package persist stores deck snapshots and the accounts that own them.
//
// Two repository backends share one contract: SQLite for single-node
// deployments and Postgres for shared ones. Autosaver decouples the document
// store from whichever Saver is configured.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/inamate/slides/internal/document"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

type Deck struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Member struct {
	UserID      string
	Role        Role
	DisplayName string
	Email       string
}

type Snapshot struct {
	ID        string
	DeckID    string
	Version   int
	Document  json.RawMessage
	CreatedAt time.Time
}

// Repository is implemented by SQLite and Postgres.
type Repository interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	CreateDeck(ctx context.Context, d Deck) (Deck, error)
	GetDeck(ctx context.Context, id string) (Deck, error)
	ListDecksForUser(ctx context.Context, userID string) ([]Deck, error)
	RenameDeck(ctx context.Context, id, title string) error
	DeleteDeck(ctx context.Context, id string) error

	AddMember(ctx context.Context, deckID, userID string, role Role) error
	GetMember(ctx context.Context, deckID, userID string) (Member, error)
	ListMembers(ctx context.Context, deckID string) ([]Member, error)
	RemoveMember(ctx context.Context, deckID, userID string) error

	// SaveSnapshot appends a snapshot with the next version number.
	SaveSnapshot(ctx context.Context, id, deckID string, doc json.RawMessage) (Snapshot, error)
	LatestSnapshot(ctx context.Context, deckID string) (Snapshot, error)

	Close() error
}

// Saver writes a whole document snapshot somewhere durable.
type Saver interface {
	Save(ctx context.Context, doc document.Document) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, doc document.Document) error

func (f SaverFunc) Save(ctx context.Context, doc document.Document) error { return f(ctx, doc) }
