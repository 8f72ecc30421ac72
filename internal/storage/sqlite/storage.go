// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sentidash/sentidash/internal/storage"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrEmptyPath indicates a missing database path.
var ErrEmptyPath = errors.New("sqlite storage: db path cannot be empty")

// SQLiteStorage implements storage.Store using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

var _ storage.Store = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates the database at dbPath and ensures the schema.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, ErrEmptyPath
	}

	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite storage: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: open db: %w", err)
	}
	// one connection: every in-memory connection would otherwise be its own database
	db.SetMaxOpenConns(1)

	s := &SQLiteStorage{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying SQLite connection.
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite storage: ping: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite storage: set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("sqlite storage: create schema: %w", err)
	}

	return nil
}

// IsEmpty reports whether no hourly records are stored.
func (s *SQLiteStorage) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM financial_sentiment_correlation").Scan(&n); err != nil {
		return false, fmt.Errorf("sqlite storage: count records: %w", err)
	}
	return n == 0, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS financial_sentiment_correlation (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	hour TEXT NOT NULL,
	avg_sentiment_score REAL,
	avg_sentiment_subjectivity REAL,
	sentiment_category TEXT NOT NULL,
	avg_close_price REAL,
	max_high_price REAL,
	min_low_price REAL,
	total_volume INTEGER,
	price_points INTEGER,
	price_change_percent REAL,
	sentiment_change REAL
);
CREATE INDEX IF NOT EXISTS idx_fsc_hour ON financial_sentiment_correlation(hour);
CREATE INDEX IF NOT EXISTS idx_fsc_symbol_hour ON financial_sentiment_correlation(symbol, hour);

CREATE TABLE IF NOT EXISTS news_with_sentiment (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT,
	title TEXT NOT NULL,
	description TEXT,
	url TEXT,
	published_at TEXT NOT NULL,
	source TEXT,
	sentiment_score REAL,
	sentiment_subjectivity REAL
);
CREATE INDEX IF NOT EXISTS idx_news_published ON news_with_sentiment(published_at);
`
