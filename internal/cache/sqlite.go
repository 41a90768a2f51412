package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/repolens/repolens/pkg/models"
)

// SQLiteStore persists reports in a SQLite database. Unlike the other
// backends it keeps every analysis row, so past runs can be listed with
// History.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
	key        TEXT PRIMARY KEY,
	repo       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	report     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (*models.AnalysisReport, bool, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT report FROM analyses WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	report, err := models.UnmarshalReport(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return report, true, nil
}

func (s *SQLiteStore) Put(key string, report *models.AnalysisReport) error {
	data, err := report.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO analyses (key, repo, created_at, report) VALUES (?, ?, ?, ?)`,
		key, report.Repo, time.Now().UTC(), data,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// HistoryEntry summarizes one stored analysis.
type HistoryEntry struct {
	Key       string
	Repo      string
	CreatedAt time.Time
	Summary   models.Summary
}

// History returns the most recent stored analyses, newest first.
func (s *SQLiteStore) History(limit int) ([]HistoryEntry, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT key, repo, created_at, report FROM analyses ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var data []byte
		if err := rows.Scan(&e.Key, &e.Repo, &e.CreatedAt, &data); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		report, err := models.UnmarshalReport(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode analysis row: %w", err)
		}
		e.Summary = report.Summary
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
