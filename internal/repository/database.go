package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Store is the normalized metrics store, a single local SQLite file. The
// file's existence and size double as the staleness signal for the read path.
type Store struct {
	db          *sql.DB
	path        string
	minFileSize int64
}

// schemaStatements creates the normalized schema. Safe to apply repeatedly.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS Seasons (
		season_id  TEXT PRIMARY KEY,
		start_year INTEGER NOT NULL,
		end_year   INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Conferences (
		conference_id   TEXT PRIMARY KEY,
		conference_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS Teams (
		team_id       INTEGER PRIMARY KEY AUTOINCREMENT,
		team_name     TEXT NOT NULL UNIQUE,
		conference_id TEXT NOT NULL REFERENCES Conferences(conference_id)
	)`,
	`CREATE TABLE IF NOT EXISTS TeamStats (
		stat_id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		team_id                   INTEGER NOT NULL REFERENCES Teams(team_id),
		season_id                 TEXT NOT NULL REFERENCES Seasons(season_id),
		average_offensive_rating  REAL NOT NULL,
		average_defensive_rating  REAL NOT NULL,
		average_net_rating        REAL NOT NULL,
		average_plus_minus        REAL NOT NULL,
		relative_net_rating       REAL NOT NULL,
		relative_offensive_rating REAL NOT NULL,
		relative_defensive_rating REAL NOT NULL,
		UNIQUE (team_id, season_id)
	)`,
}

// conferenceNames maps the stored conference code to its full name.
var conferenceNames = map[string]string{
	"W": "Western",
	"E": "Eastern",
}

// NewStore opens (creating if necessary) the metrics store at path.
func NewStore(path string, minFileSize int64) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping metrics store: %w", err)
	}

	log.Info().Str("path", path).Msg("Metrics store opened")

	return &Store{db: db, path: path, minFileSize: minFileSize}, nil
}

// Close closes the store.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
		log.Info().Msg("Metrics store closed")
	}
}

// Path returns the store's file path.
func (s *Store) Path() string {
	return s.path
}

// Health checks that the store file answers queries.
func (s *Store) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("metrics store health check failed: %w", err)
	}
	return nil
}

// createSchema applies the schema and seeds the conference lookup inside the
// caller's transaction.
func createSchema(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	for code, name := range conferenceNames {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO Conferences (conference_id, conference_name) VALUES (?, ?)`,
			code, name,
		)
		if err != nil {
			return fmt.Errorf("failed to seed conferences: %w", err)
		}
	}

	return nil
}
