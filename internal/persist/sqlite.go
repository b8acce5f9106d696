package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		email        TEXT NOT NULL UNIQUE,
		password     TEXT NOT NULL,
		display_name TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS decks (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		owner_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS deck_members (
		deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role    TEXT NOT NULL,
		PRIMARY KEY (deck_id, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS snapshots (
		id         TEXT PRIMARY KEY,
		deck_id    TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
		version    INTEGER NOT NULL,
		document   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (deck_id, version)
	);`,
}

// SQLite is a Repository backed by a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path, enables WAL and
// foreign keys, and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	for _, q := range sqliteSchema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) CreateUser(ctx context.Context, u User) (User, error) {
	u.CreatedAt = now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password, display_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.DisplayName, formatTime(u.CreatedAt))
	if err != nil {
		return User{}, sqliteErr("create user", err)
	}
	return u, nil
}

func (s *SQLite) GetUserByID(ctx context.Context, id string) (User, error) {
	return s.getUser(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE id = ?`, id)
}

func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.getUser(ctx, `SELECT id, email, password, display_name, created_at FROM users WHERE email = ?`, email)
}

func (s *SQLite) getUser(ctx context.Context, q, arg string) (User, error) {
	var u User
	var created string
	err := s.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &created)
	if err != nil {
		return User{}, sqliteErr("get user", err)
	}
	u.CreatedAt = parseTime(created)
	return u, nil
}

func (s *SQLite) CreateDeck(ctx context.Context, d Deck) (Deck, error) {
	d.CreatedAt = now()
	d.UpdatedAt = d.CreatedAt
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decks (id, title, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.OwnerID, formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	if err != nil {
		return Deck{}, sqliteErr("create deck", err)
	}
	return d, nil
}

func (s *SQLite) GetDeck(ctx context.Context, id string) (Deck, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, owner_id, created_at, updated_at FROM decks WHERE id = ?`, id)
	d, err := scanDeck(row)
	if err != nil {
		return Deck{}, sqliteErr("get deck", err)
	}
	return d, nil
}

func (s *SQLite) ListDecksForUser(ctx context.Context, userID string) ([]Deck, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.title, d.owner_id, d.created_at, d.updated_at
		FROM decks d
		JOIN deck_members m ON m.deck_id = d.id
		WHERE m.user_id = ?
		ORDER BY d.updated_at DESC, d.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deck: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (s *SQLite) RenameDeck(ctx context.Context, id, title string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE decks SET title = ?, updated_at = ? WHERE id = ?`, title, formatTime(now()), id)
	if err != nil {
		return fmt.Errorf("rename deck: %w", err)
	}
	return requireRow(res)
}

func (s *SQLite) DeleteDeck(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete deck: %w", err)
	}
	return requireRow(res)
}

func (s *SQLite) AddMember(ctx context.Context, deckID, userID string, role Role) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deck_members (deck_id, user_id, role) VALUES (?, ?, ?)`, deckID, userID, string(role))
	if err != nil {
		return sqliteErr("add member", err)
	}
	return nil
}

func (s *SQLite) GetMember(ctx context.Context, deckID, userID string) (Member, error) {
	var m Member
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT m.user_id, m.role, u.display_name, u.email
		FROM deck_members m JOIN users u ON u.id = m.user_id
		WHERE m.deck_id = ? AND m.user_id = ?`, deckID, userID).
		Scan(&m.UserID, &role, &m.DisplayName, &m.Email)
	if err != nil {
		return Member{}, sqliteErr("get member", err)
	}
	m.Role = Role(role)
	return m, nil
}

func (s *SQLite) ListMembers(ctx context.Context, deckID string) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.user_id, m.role, u.display_name, u.email
		FROM deck_members m JOIN users u ON u.id = m.user_id
		WHERE m.deck_id = ?
		ORDER BY u.display_name, m.user_id`, deckID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		var role string
		if err := rows.Scan(&m.UserID, &role, &m.DisplayName, &m.Email); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Role = Role(role)
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *SQLite) RemoveMember(ctx context.Context, deckID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM deck_members WHERE deck_id = ? AND user_id = ?`, deckID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return requireRow(res)
}

func (s *SQLite) SaveSnapshot(ctx context.Context, id, deckID string, doc json.RawMessage) (Snapshot, error) {
	snap := Snapshot{ID: id, DeckID: deckID, Document: doc, CreatedAt: now()}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO snapshots (id, deck_id, version, document, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE deck_id = ?), ?, ?)
		RETURNING version`,
		id, deckID, deckID, string(doc), formatTime(snap.CreatedAt)).Scan(&snap.Version)
	if err != nil {
		return Snapshot{}, sqliteErr("save snapshot", err)
	}
	return snap, nil
}

func (s *SQLite) LatestSnapshot(ctx context.Context, deckID string) (Snapshot, error) {
	var snap Snapshot
	var doc, created string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, deck_id, version, document, created_at
		FROM snapshots WHERE deck_id = ?
		ORDER BY version DESC LIMIT 1`, deckID).
		Scan(&snap.ID, &snap.DeckID, &snap.Version, &doc, &created)
	if err != nil {
		return Snapshot{}, sqliteErr("latest snapshot", err)
	}
	snap.Document = json.RawMessage(doc)
	snap.CreatedAt = parseTime(created)
	return snap, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeck(row scanner) (Deck, error) {
	var d Deck
	var created, updated string
	if err := row.Scan(&d.ID, &d.Title, &d.OwnerID, &created, &updated); err != nil {
		return Deck{}, err
	}
	d.CreatedAt = parseTime(created)
	d.UpdatedAt = parseTime(updated)
	return d, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// sqliteErr maps driver errors onto the package sentinels.
func sqliteErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			(code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")) {
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

// Fixed-width so TEXT columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
