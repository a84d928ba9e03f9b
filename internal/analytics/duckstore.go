// Package analytics answers aggregate questions about the loaded datasets
// from an in-memory DuckDB table rebuilt after each reload.
package analytics

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"

	"github.com/marcboeker/go-duckdb"

	"github.com/court-fetcher/backend/internal/models"
)

// YearCount is the number of rows one dataset holds for one filing year.
type YearCount struct {
	Dataset    string `json:"dataset"`
	FilingYear int    `json:"filingYear"`
	Rows       int    `json:"rows"`
}

// StatusCount is the number of rows in one case status across all datasets.
type StatusCount struct {
	Status string `json:"status"`
	Rows   int    `json:"rows"`
}

// Store holds the aggregate table. Rebuild replaces its contents wholesale.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// NewStore opens an in-memory DuckDB and creates the aggregate table.
func NewStore() (*Store, error) {
	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE case_rows (
			dataset     VARCHAR NOT NULL,
			case_number BIGINT NOT NULL,
			row_index   INTEGER NOT NULL,
			filing_year INTEGER NOT NULL,
			status      VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating case_rows table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Rebuild replaces the aggregate table's contents with the given records.
func (s *Store) Rebuild(records []models.DatasetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM case_rows`); err != nil {
		return fmt.Errorf("clearing case_rows: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO case_rows (dataset, case_number, row_index, filing_year, status) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.SourceDataset, rec.CaseNumber, rec.RowIndex, rec.FilingYear, string(rec.Status)); err != nil {
			return fmt.Errorf("inserting case row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild: %w", err)
	}
	return nil
}

// DatasetYearCounts returns the rows-per-filing-year breakdown per dataset.
func (s *Store) DatasetYearCounts(ctx context.Context) ([]YearCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dataset, filing_year, COUNT(*) AS n
		FROM case_rows
		GROUP BY dataset, filing_year
		ORDER BY dataset, filing_year
	`)
	if err != nil {
		return nil, fmt.Errorf("querying year counts: %w", err)
	}
	defer rows.Close()

	var counts []YearCount
	for rows.Next() {
		var c YearCount
		if err := rows.Scan(&c.Dataset, &c.FilingYear, &c.Rows); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// StatusBreakdown returns the row count per case status across all datasets.
func (s *Store) StatusBreakdown(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) AS n
		FROM case_rows
		GROUP BY status
		ORDER BY n DESC, status
	`)
	if err != nil {
		return nil, fmt.Errorf("querying status breakdown: %w", err)
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Rows); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
