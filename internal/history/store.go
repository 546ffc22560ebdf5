// Package history stores reading sessions so a document can be resumed
// where the reader left off.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no session exists for a source.
var ErrNotFound = errors.New("history: session not found")

// Session is the reading progress of one source.
type Session struct {
	ID        string
	Source    string // File path or other stable key
	Title     string
	WordCount int
	Position  int
	WPM       float64
	StartedAt time.Time
	UpdatedAt time.Time
}

// Percent returns progress through the source in [0, 100].
func (s Session) Percent() float64 {
	if s.WordCount <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.WordCount) * 100
	if p > 100 {
		return 100
	}
	return p
}

// Finished reports whether every word has been read.
func (s Session) Finished() bool {
	return s.WordCount > 0 && s.Position >= s.WordCount
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL UNIQUE,
	title       TEXT NOT NULL DEFAULT '',
	word_count  INTEGER NOT NULL DEFAULT 0,
	position    INTEGER NOT NULL DEFAULT 0,
	wpm         REAL NOT NULL DEFAULT 0,
	started_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_updated_at ON sessions(updated_at);
`

// Store is a sqlite-backed session store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite allows one writer; keep a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveProgress inserts or updates the session for sess.Source. A new
// session gets an ID and StartedAt; an existing one keeps them.
func (s *Store) SaveProgress(ctx context.Context, sess Session) (Session, error) {
	if sess.Source == "" {
		return Session{}, errors.New("history: session source is empty")
	}

	now := time.Now()
	existing, err := s.Progress(ctx, sess.Source)
	switch {
	case err == nil:
		sess.ID = existing.ID
		sess.StartedAt = existing.StartedAt
	case errors.Is(err, ErrNotFound):
		sess.ID = uuid.NewString()
		sess.StartedAt = now
	default:
		return Session{}, err
	}
	sess.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, source, title, word_count, position, wpm, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			title = excluded.title,
			word_count = excluded.word_count,
			position = excluded.position,
			wpm = excluded.wpm,
			updated_at = excluded.updated_at`,
		sess.ID, sess.Source, sess.Title, sess.WordCount, sess.Position, sess.WPM,
		sess.StartedAt.UnixNano(), sess.UpdatedAt.UnixNano())
	if err != nil {
		return Session{}, fmt.Errorf("saving session: %w", err)
	}

	return sess, nil
}

// Progress returns the session for source.
func (s *Store) Progress(ctx context.Context, source string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, title, word_count, position, wpm, started_at, updated_at
		FROM sessions WHERE source = ?`, source)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// Recent returns up to limit sessions, most recently updated first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, title, word_count, position, wpm, started_at, updated_at
		FROM sessions ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Delete removes the session for source.
func (s *Store) Delete(ctx context.Context, source string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE source = ?`, source)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var sess Session
	var started, updated int64
	err := sc.Scan(&sess.ID, &sess.Source, &sess.Title, &sess.WordCount,
		&sess.Position, &sess.WPM, &started, &updated)
	if err != nil {
		return Session{}, err
	}
	sess.StartedAt = time.Unix(0, started)
	sess.UpdatedAt = time.Unix(0, updated)
	return sess, nil
}
