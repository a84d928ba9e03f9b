// Package querylog persists one row per lookup in a local SQLite database.
package querylog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/court-fetcher/backend/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS query_logs (
	id               TEXT PRIMARY KEY,
	case_type        TEXT NOT NULL,
	case_number      INTEGER NOT NULL,
	year             INTEGER NOT NULL,
	court_level      TEXT NOT NULL,
	status           TEXT NOT NULL,
	matched_via      TEXT NOT NULL DEFAULT '',
	source_url       TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	created_at_epoch INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_query_logs_case ON query_logs(case_number);
CREATE INDEX IF NOT EXISTS idx_query_logs_epoch ON query_logs(created_at_epoch);
`

// Store wraps the query-log database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the query-log database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening query log database: %w", err)
	}
	// modernc sqlite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating query log schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert records one lookup. A zero ID and CreatedAt are filled in.
func (s *Store) Insert(ctx context.Context, entry models.QueryLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO query_logs
		(id, case_type, case_number, year, court_level, status, matched_via, source_url, created_at, created_at_epoch)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.CaseType, entry.CaseNumber, entry.Year, entry.CourtLevel,
		entry.Status, entry.MatchedVia, entry.SourceURL,
		entry.CreatedAt.UTC().Format(time.RFC3339), entry.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting query log: %w", err)
	}
	return nil
}

// Recent returns the most recent lookups, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.QueryLog, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, case_type, case_number, year, court_level, status, matched_via, source_url, created_at
		FROM query_logs
		ORDER BY created_at_epoch DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing query logs: %w", err)
	}
	defer rows.Close()

	var logs []models.QueryLog
	for rows.Next() {
		var entry models.QueryLog
		var createdAt string
		if err := rows.Scan(
			&entry.ID, &entry.CaseType, &entry.CaseNumber, &entry.Year, &entry.CourtLevel,
			&entry.Status, &entry.MatchedVia, &entry.SourceURL, &createdAt,
		); err != nil {
			return nil, err
		}
		if ts, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			entry.CreatedAt = ts
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
