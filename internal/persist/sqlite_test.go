package persist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inamate/slides/internal/document"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "slides.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedDeck(t *testing.T, repo Repository) (User, Deck) {
	t.Helper()
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, User{ID: "user_1", Email: "ada@example.com", PasswordHash: "hash", DisplayName: "Ada"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	d, err := repo.CreateDeck(ctx, Deck{ID: "deck_1", Title: "Roadmap", OwnerID: u.ID})
	if err != nil {
		t.Fatalf("CreateDeck: %v", err)
	}
	if err := repo.AddMember(ctx, d.ID, u.ID, RoleOwner); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	return u, d
}

func TestSQLiteUsers(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()
	u, _ := seedDeck(t, repo)

	got, err := repo.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", got)
	}

	_, err = repo.CreateUser(ctx, User{ID: "user_2", Email: "ada@example.com", PasswordHash: "x", DisplayName: "Dup"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: got %v, want ErrDuplicate", err)
	}
	if _, err := repo.GetUserByID(ctx, "user_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteDecksAndMembers(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()
	_, deck := seedDeck(t, repo)

	if _, err := repo.CreateUser(ctx, User{ID: "user_2", Email: "bob@example.com", PasswordHash: "h", DisplayName: "Bob"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := repo.AddMember(ctx, deck.ID, "user_2", RoleEditor); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	members, err := repo.ListMembers(ctx, deck.ID)
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 || members[0].DisplayName != "Ada" || members[1].Role != RoleEditor {
		t.Errorf("unexpected members: %+v", members)
	}

	decks, err := repo.ListDecksForUser(ctx, "user_2")
	if err != nil || len(decks) != 1 || decks[0].ID != deck.ID {
		t.Fatalf("ListDecksForUser = %v, %v", decks, err)
	}

	if err := repo.RenameDeck(ctx, deck.ID, "Roadmap 2027"); err != nil {
		t.Fatalf("RenameDeck: %v", err)
	}
	got, err := repo.GetDeck(ctx, deck.ID)
	if err != nil || got.Title != "Roadmap 2027" {
		t.Errorf("GetDeck after rename = %+v, %v", got, err)
	}

	if err := repo.RemoveMember(ctx, deck.ID, "user_2"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if _, err := repo.GetMember(ctx, deck.ID, "user_2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("removed member: got %v, want ErrNotFound", err)
	}

	if err := repo.DeleteDeck(ctx, deck.ID); err != nil {
		t.Fatalf("DeleteDeck: %v", err)
	}
	if err := repo.DeleteDeck(ctx, deck.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestSQLiteSnapshotsAndDeckSaver(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()
	_, deck := seedDeck(t, repo)

	if _, err := LoadDocument(ctx, repo, deck.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadDocument before save: got %v, want ErrNotFound", err)
	}

	saver := NewDeckSaver(repo, deck.ID)
	first := document.New(deck.ID, "slide_1")
	if err := saver.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := first
	second.Title = "Retitled"
	if err := saver.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := repo.LatestSnapshot(ctx, deck.ID)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if snap.Version != 2 {
		t.Errorf("version = %d, want 2", snap.Version)
	}

	doc, err := LoadDocument(ctx, repo, deck.ID)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.Title != "Retitled" {
		t.Errorf("title = %q", doc.Title)
	}
	got, _ := repo.GetDeck(ctx, deck.ID)
	if got.Title != "Retitled" {
		t.Errorf("deck row title = %q, want Retitled", got.Title)
	}
}
