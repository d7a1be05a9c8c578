package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is an open handle to the local SQLite database. Callers obtain one
// from Open and pass it to the components that need persistence; there is no
// package-level handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and prepares the
// schema. Pass ":memory:" for an ephemeral in-memory database in tests.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps writes serialized and makes :memory:
	// databases behave with the connection pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recordings (
			id              INTEGER PRIMARY KEY,
			name            TEXT    NOT NULL,
			size            INTEGER NOT NULL,
			mime_type       TEXT    NOT NULL,
			payload         BLOB    NOT NULL,
			status          TEXT    NOT NULL DEFAULT 'new',
			progress        INTEGER NOT NULL DEFAULT 0,
			pieces          TEXT    NOT NULL DEFAULT '[]',
			formatted_notes TEXT    NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS fragments (
			recording_id INTEGER NOT NULL,
			seq          INTEGER NOT NULL,
			data         BLOB    NOT NULL,
			PRIMARY KEY (recording_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS vocabulary (
			id          INTEGER PRIMARY KEY,
			word        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}
