package persist

import (
	"context"
	"os"
	"testing"
)

// Runs against a scratch database when SLIDES_TEST_DATABASE_URL is set.
func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("SLIDES_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SLIDES_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	repo, err := OpenPostgres(ctx, url)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer repo.Close()

	for _, table := range []string{"snapshots", "deck_members", "decks", "users"} {
		if _, err := repo.pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}

	_, deck := seedDeck(t, repo)
	snap, err := repo.SaveSnapshot(ctx, "snap_1", deck.ID, []byte(`{"id":"deck_1"}`))
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if snap.Version != 1 {
		t.Errorf("version = %d, want 1", snap.Version)
	}
	latest, err := repo.LatestSnapshot(ctx, deck.ID)
	if err != nil || latest.ID != "snap_1" {
		t.Errorf("LatestSnapshot = %+v, %v", latest, err)
	}
}
