package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one remembered search query
type Entry struct {
	ID         int64
	Query      string
	Document   string
	MatchCount int
	SearchedAt time.Time
}

// Store persists recently issued search queries. Re-adding a query moves it
// to the front instead of creating a duplicate.
type Store struct {
	db         *sql.DB
	maxEntries int
}

// NewStore opens (or creates) the history database at path. At most
// maxEntries queries are kept; zero or less keeps everything.
func NewStore(path string, maxEntries int) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	// sqlite serializes writers anyway; one connection also keeps ":memory:" shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Add records a query. Empty queries are ignored.
func (s *Store) Add(ctx context.Context, entry Entry) error {
	if entry.Query == "" {
		return nil
	}
	if entry.SearchedAt.IsZero() {
		entry.SearchedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO search_history (query, document, match_count, searched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET
			document = excluded.document,
			match_count = excluded.match_count,
			searched_at = excluded.searched_at`,
		entry.Query,
		entry.Document,
		entry.MatchCount,
		entry.SearchedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}

	if s.maxEntries > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM search_history
			WHERE id NOT IN (
				SELECT id FROM search_history
				ORDER BY searched_at DESC, id DESC
				LIMIT ?)`, s.maxEntries)
		if err != nil {
			return fmt.Errorf("failed to trim history: %w", err)
		}
	}
	return tx.Commit()
}

// GetRecent retrieves the most recent queries, newest first
func (s *Store) GetRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, document, match_count, searched_at
		FROM search_history
		ORDER BY searched_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Search returns remembered queries starting with prefix, newest first
func (s *Store) Search(ctx context.Context, prefix string, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, document, match_count, searched_at
		FROM search_history
		WHERE substr(query, 1, length(?)) = ?
		ORDER BY searched_at DESC, id DESC
		LIMIT ?`, prefix, prefix, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var searchedAt int64
		if err := rows.Scan(&e.ID, &e.Query, &e.Document, &e.MatchCount, &searchedAt); err != nil {
			return nil, err
		}
		e.SearchedAt = time.Unix(0, searchedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes every entry
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM search_history`)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
