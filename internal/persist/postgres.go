package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		email        TEXT NOT NULL UNIQUE,
		password     TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS decks (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		owner_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS deck_members (
		deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role    TEXT NOT NULL,
		PRIMARY KEY (deck_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		id         TEXT PRIMARY KEY,
		deck_id    TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
		version    INTEGER NOT NULL,
		document   JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (deck_id, version)
	)`,
}

// Postgres is a Repository backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL, verifies the connection and ensures
// the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, q := range postgresSchema {
		if _, err := pool.Exec(ctx, q); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) CreateUser(ctx context.Context, u User) (User, error) {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName).Scan(&u.CreatedAt)
	if err != nil {
		return User{}, pgErr("create user", err)
	}
	return u, nil
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (User, error) {
	return p.getUser(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`, id)
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return p.getUser(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`, email)
}

func (p *Postgres) getUser(ctx context.Context, q, arg string) (User, error) {
	var u User
	err := p.pool.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	if err != nil {
		return User{}, pgErr("get user", err)
	}
	return u, nil
}

func (p *Postgres) CreateDeck(ctx context.Context, d Deck) (Deck, error) {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO decks (id, title, owner_id)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		d.ID, d.Title, d.OwnerID).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Deck{}, pgErr("create deck", err)
	}
	return d, nil
}

func (p *Postgres) GetDeck(ctx context.Context, id string) (Deck, error) {
	var d Deck
	err := p.pool.QueryRow(ctx,
		`SELECT id, title, owner_id, created_at, updated_at FROM decks WHERE id = $1`, id).
		Scan(&d.ID, &d.Title, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Deck{}, pgErr("get deck", err)
	}
	return d, nil
}

func (p *Postgres) ListDecksForUser(ctx context.Context, userID string) ([]Deck, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT d.id, d.title, d.owner_id, d.created_at, d.updated_at
		FROM decks d
		JOIN deck_members m ON m.deck_id = d.id
		WHERE m.user_id = $1
		ORDER BY d.updated_at DESC, d.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Deck, error) {
		var d Deck
		err := row.Scan(&d.ID, &d.Title, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	})
}

func (p *Postgres) RenameDeck(ctx context.Context, id, title string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE decks SET title = $2, updated_at = now() WHERE id = $1`, id, title)
	if err != nil {
		return fmt.Errorf("rename deck: %w", err)
	}
	return requireTag(tag)
}

func (p *Postgres) DeleteDeck(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	return requireTag(tag)
}

func (p *Postgres) AddMember(ctx context.Context, deckID, userID string, role Role) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO deck_members (deck_id, user_id, role) VALUES ($1, $2, $3)`, deckID, userID, string(role))
	if err != nil {
		return pgErr("add member", err)
	}
	return nil
}

func (p *Postgres) GetMember(ctx context.Context, deckID, userID string) (Member, error) {
	var m Member
	err := p.pool.QueryRow(ctx, `
		SELECT m.user_id, m.role, u.display_name, u.email
		FROM deck_members m JOIN users u ON u.id = m.user_id
		WHERE m.deck_id = $1 AND m.user_id = $2`, deckID, userID).
		Scan(&m.UserID, &m.Role, &m.DisplayName, &m.Email)
	if err != nil {
		return Member{}, pgErr("get member", err)
	}
	return m, nil
}

func (p *Postgres) ListMembers(ctx context.Context, deckID string) ([]Member, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT m.user_id, m.role, u.display_name, u.email
		FROM deck_members m JOIN users u ON u.id = m.user_id
		WHERE m.deck_id = $1
		ORDER BY u.display_name, m.user_id`, deckID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Member, error) {
		var m Member
		err := row.Scan(&m.UserID, &m.Role, &m.DisplayName, &m.Email)
		return m, err
	})
}

func (p *Postgres) RemoveMember(ctx context.Context, deckID, userID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM deck_members WHERE deck_id = $1 AND user_id = $2`, deckID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return requireTag(tag)
}

func (p *Postgres) SaveSnapshot(ctx context.Context, id, deckID string, doc json.RawMessage) (Snapshot, error) {
	snap := Snapshot{ID: id, DeckID: deckID, Document: doc}
	err := p.pool.QueryRow(ctx, `
		INSERT INTO snapshots (id, deck_id, version, document)
		VALUES ($1, $2, (SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE deck_id = $2), $3)
		RETURNING version, created_at`,
		id, deckID, []byte(doc)).Scan(&snap.Version, &snap.CreatedAt)
	if err != nil {
		return Snapshot{}, pgErr("save snapshot", err)
	}
	return snap, nil
}

func (p *Postgres) LatestSnapshot(ctx context.Context, deckID string) (Snapshot, error) {
	var snap Snapshot
	var doc []byte
	err := p.pool.QueryRow(ctx, `
		SELECT id, deck_id, version, document, created_at
		FROM snapshots WHERE deck_id = $1
		ORDER BY version DESC LIMIT 1`, deckID).
		Scan(&snap.ID, &snap.DeckID, &snap.Version, &doc, &snap.CreatedAt)
	if err != nil {
		return Snapshot{}, pgErr("latest snapshot", err)
	}
	snap.Document = doc
	return snap, nil
}

func requireTag(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func pgErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == "23505" { // unique_violation
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}
