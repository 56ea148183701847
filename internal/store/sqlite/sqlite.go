// Package sqlite is the relational-table LocalStore. Booleans are stored as
// 0/1 integers and timestamps as RFC 3339 text.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/savelater/internal/domain"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const driverName = "sqlite3"

const createTable = `CREATE TABLE IF NOT EXISTS hyperlinks (
	id        TEXT PRIMARY KEY NOT NULL,
	title     TEXT,
	url       TEXT,
	visited   INTEGER,
	createdOn TEXT,
	updatedOn TEXT,
	owner     TEXT,
	dirty     INTEGER,
	deleted   INTEGER
)`

type hyperlinkRecord struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	URL       string `db:"url"`
	Visited   int    `db:"visited"`
	CreatedOn string `db:"createdOn"`
	UpdatedOn string `db:"updatedOn"`
	Owner     string `db:"owner"`
	Dirty     int    `db:"dirty"`
	Deleted   int    `db:"deleted"`
}

func toRecord(h domain.Hyperlink) hyperlinkRecord {
	return hyperlinkRecord{
		ID:        h.ID,
		Title:     h.Title,
		URL:       h.URL,
		Visited:   boolToInt(h.Visited),
		CreatedOn: formatTime(h.CreatedOn),
		UpdatedOn: formatTime(h.UpdatedOn),
		Owner:     h.Owner,
		Dirty:     boolToInt(h.Dirty),
		Deleted:   boolToInt(h.Deleted),
	}
}

func (r hyperlinkRecord) toHyperlink() (domain.Hyperlink, error) {
	created, err := parseTime(r.CreatedOn)
	if err != nil {
		return domain.Hyperlink{}, fmt.Errorf("createdOn of %s: %w", r.ID, err)
	}
	updated, err := parseTime(r.UpdatedOn)
	if err != nil {
		return domain.Hyperlink{}, fmt.Errorf("updatedOn of %s: %w", r.ID, err)
	}

	return domain.Hyperlink{
		ID:        r.ID,
		URL:       r.URL,
		Title:     r.Title,
		Visited:   r.Visited != 0,
		CreatedOn: created,
		UpdatedOn: updated,
		Owner:     r.Owner,
		Dirty:     r.Dirty != 0,
		Deleted:   r.Deleted != 0,
	}, nil
}

// Store keeps hyperlinks in one SQLite table.
type Store struct {
	path string

	mu sync.Mutex
	db *sqlx.DB
}

// New returns a store backed by the database file at path. The file and its
// directory are created by Init.
func New(path string) *Store {
	return &Store{path: path}
}

// Init opens the database and creates the table. Safe to call more than once.
func (s *Store) Init(ctx context.Context) error {
	const op = "store.sqlite.Init"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%s: failed to create database directory: %w", op, err)
	}

	db, err := sqlx.Open(driverName, "file:"+s.path)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnsupported, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnsupported, err)
	}

	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return fmt.Errorf("%s: failed to run %q: %w", op, pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, createTable); err != nil {
		_ = db.Close()
		return fmt.Errorf("%s: failed to create table: %w", op, err)
	}

	s.db = db
	return nil
}

func (s *Store) conn() (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, domain.ErrStoreNotInitialized
	}
	return s.db, nil
}

// GetAll returns every row, tombstones included.
func (s *Store) GetAll(ctx context.Context) (map[string]domain.Hyperlink, error) {
	const op = "store.sqlite.GetAll"

	db, err := s.conn()
	if err != nil {
		return nil, err
	}

	var recs []hyperlinkRecord
	query := `SELECT id, IFNULL(title, '') AS title, IFNULL(url, '') AS url,
		IFNULL(visited, 0) AS visited, IFNULL(createdOn, '') AS createdOn,
		IFNULL(updatedOn, '') AS updatedOn, IFNULL(owner, '') AS owner,
		IFNULL(dirty, 0) AS dirty, IFNULL(deleted, 0) AS deleted
		FROM hyperlinks`
	if err := db.SelectContext(ctx, &recs, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select hyperlinks: %w", op, err)
	}

	out := make(map[string]domain.Hyperlink, len(recs))
	for _, rec := range recs {
		h, err := rec.toHyperlink()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out[h.ID] = h
	}
	return out, nil
}

// Upsert inserts or replaces the row with the same id.
func (s *Store) Upsert(ctx context.Context, h domain.Hyperlink) error {
	const op = "store.sqlite.Upsert"

	db, err := s.conn()
	if err != nil {
		return err
	}

	query := `REPLACE INTO hyperlinks
		(id, title, url, visited, createdOn, updatedOn, owner, dirty, deleted)
		VALUES (:id, :title, :url, :visited, :createdOn, :updatedOn, :owner, :dirty, :deleted)`
	if _, err := db.NamedExecContext(ctx, query, toRecord(h)); err != nil {
		return fmt.Errorf("%s: failed to save hyperlink: %w", op, err)
	}
	return nil
}

// Delete removes a row; unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	const op = "store.sqlite.Delete"

	db, err := s.conn()
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM hyperlinks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: failed to delete hyperlink: %w", op, err)
	}
	return nil
}

// Wipe drops and recreates the table.
func (s *Store) Wipe(ctx context.Context) error {
	const op = "store.sqlite.Wipe"

	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS hyperlinks`); err != nil {
		return fmt.Errorf("%s: failed to drop table: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("%s: failed to create table: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}
	return nil
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
