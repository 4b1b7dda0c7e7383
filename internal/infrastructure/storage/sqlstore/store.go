// Package sqlstore persists repositories in SQLite or Postgres.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ReviewScout/internal/domain"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store owns the connection pool and hands out repositories.
type Store struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
}

// Open connects, tunes the connection and creates missing tables.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	driver = strings.ToLower(driver)
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// One writer at a time; also keeps in-memory databases on a single connection.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	s := New(db, driver)
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool. The schema is assumed to exist.
func New(db *sql.DB, driver string) *Store {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Store{db: db, driver: driver, sb: sb}
}

// Close closes the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Reviews() *Reviews     { return &Reviews{s: s} }
func (s *Store) Insights() *Insights   { return &Insights{s: s} }
func (s *Store) Feedback() *Feedback   { return &Feedback{s: s} }
func (s *Store) Overrides() *Overrides { return &Overrides{s: s} }
func (s *Store) Catalog() *Catalog     { return &Catalog{s: s} }

func (s *Store) initSchema(ctx context.Context) error {
	ts := "TIMESTAMP"
	boolean := "INTEGER"
	if s.driver == DriverPostgres {
		ts = "TIMESTAMPTZ"
		boolean = "BOOLEAN"
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	platform TEXT NOT NULL,
	external_id TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	author TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	thumbnail_url TEXT NOT NULL DEFAULT '',
	published_at ` + ts + ` NOT NULL,
	views BIGINT NOT NULL DEFAULT 0,
	likes BIGINT NOT NULL DEFAULT 0,
	comments BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	created_at ` + ts + ` NOT NULL,
	updated_at ` + ts + ` NOT NULL,
	UNIQUE (platform, external_id)
)`,
		`CREATE INDEX IF NOT EXISTS reviews_status_idx ON reviews (status)`,
		`CREATE TABLE IF NOT EXISTS review_matches (
	review_id TEXT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
	product_code TEXT NOT NULL,
	match_score INTEGER NOT NULL,
	PRIMARY KEY (review_id, product_code)
)`,
		`CREATE INDEX IF NOT EXISTS review_matches_product_idx ON review_matches (product_code)`,
		`CREATE TABLE IF NOT EXISTS insights (
	product_code TEXT PRIMARY KEY,
	narrative TEXT NOT NULL,
	summary TEXT NOT NULL,
	hashtags TEXT NOT NULL,
	positive_ratio INTEGER NOT NULL,
	negative_ratio INTEGER NOT NULL,
	source_review_ids TEXT NOT NULL,
	last_analyzed_at ` + ts + ` NOT NULL,
	version INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS feedback (
	id TEXT PRIMARY KEY,
	product_code TEXT NOT NULL,
	original_summary TEXT NOT NULL,
	corrected_summary TEXT NOT NULL,
	created_at ` + ts + ` NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS feedback_product_idx ON feedback (product_code, created_at)`,
		`CREATE TABLE IF NOT EXISTS overrides (
	product_code TEXT PRIMARY KEY,
	summary TEXT NOT NULL,
	hashtags TEXT NOT NULL,
	positive_ratio INTEGER NOT NULL,
	negative_ratio INTEGER NOT NULL,
	direction TEXT NOT NULL DEFAULT '',
	updated_at ` + ts + ` NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS products (
	code TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	sale_active ` + boolean + ` NOT NULL,
	detail_blob TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT ''
)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// isUniqueViolation recognizes constraint errors of both drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE")
		}
	}
	return false
}

func wrapWrite(err error, what string) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}
