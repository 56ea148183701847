package hyperlinkdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MrSnakeDoc/savelater/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnMaxLifetime = 30 * time.Minute
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 25
)

type Option func(*sqlx.DB)

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(db *sqlx.DB) {
		db.SetConnMaxIdleTime(d)
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(db *sqlx.DB) {
		db.SetConnMaxLifetime(d)
	}
}

func WithMaxIdleConns(n int) Option {
	return func(db *sqlx.DB) {
		db.SetMaxIdleConns(n)
	}
}

func WithMaxOpenConns(n int) Option {
	return func(db *sqlx.DB) {
		db.SetMaxOpenConns(n)
	}
}

// Connect opens a pgx-backed pool.
func Connect(ctx context.Context, dsn string, opts ...Option) (*sqlx.DB, error) {
	const op = "hyperlinkdb.Connect"

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetMaxOpenConns(defaultMaxOpenConns)

	for _, opt := range opts {
		opt(db)
	}

	return db, nil
}

type hyperlinkRecord struct {
	ID        string    `db:"id"`
	URL       string    `db:"url"`
	Title     string    `db:"title"`
	Visited   bool      `db:"visited"`
	Owner     string    `db:"owner"`
	CreatedOn time.Time `db:"created_on"`
	UpdatedOn time.Time `db:"updated_on"`
}

func (r *hyperlinkRecord) toHyperlink() domain.Hyperlink {
	return domain.Hyperlink{
		ID:        r.ID,
		URL:       r.URL,
		Title:     r.Title,
		Visited:   r.Visited,
		Owner:     r.Owner,
		CreatedOn: r.CreatedOn.UTC(),
		UpdatedOn: r.UpdatedOn.UTC(),
	}
}

// PostgresStore is the Store backed by the hyperlinks table.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

func (s *PostgresStore) List(ctx context.Context, owner string) ([]domain.Hyperlink, error) {
	const op = "hyperlinkdb.PostgresStore.List"

	var recs []hyperlinkRecord
	query := `SELECT id, url, title, visited, owner, created_on, updated_on
		FROM hyperlinks
		WHERE owner = $1
		ORDER BY created_on DESC, id DESC`

	if err := s.db.SelectContext(ctx, &recs, query, owner); err != nil {
		return nil, fmt.Errorf("%s: failed to list hyperlinks: %w", op, err)
	}

	out := make([]domain.Hyperlink, 0, len(recs))
	for i := range recs {
		out = append(out, recs[i].toHyperlink())
	}
	return out, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, h domain.Hyperlink) (domain.Hyperlink, error) {
	const op = "hyperlinkdb.PostgresStore.Upsert"

	rec := new(hyperlinkRecord)
	query := `INSERT INTO hyperlinks (id, url, title, visited, owner, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			url = EXCLUDED.url,
			title = EXCLUDED.title,
			visited = EXCLUDED.visited,
			owner = EXCLUDED.owner,
			updated_on = EXCLUDED.updated_on
		RETURNING id, url, title, visited, owner, created_on, updated_on`

	err := s.db.GetContext(ctx, rec, query,
		h.ID, h.URL, h.Title, h.Visited, h.Owner, h.CreatedOn, h.UpdatedOn)
	if err != nil {
		return domain.Hyperlink{}, fmt.Errorf("%s: failed to upsert hyperlink: %w", op, err)
	}

	return rec.toHyperlink(), nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	const op = "hyperlinkdb.PostgresStore.Delete"

	if _, err := s.db.ExecContext(ctx, `DELETE FROM hyperlinks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: failed to delete hyperlink: %w", op, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
