package hyperlinkdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

var errUnknown = errors.New("unknown error")

var columns = []string{"id", "url", "title", "visited", "owner", "created_on", "updated_on"}

func setupPostgresStore(t testing.TB) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}

	db := sqlx.NewDb(mockDB, "sqlmock")
	store := NewPostgresStore(db)

	t.Cleanup(func() {
		mockDB.Close()
		db.Close()
	})

	return store, mock
}

func TestPostgresStore_List(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown error", func(t *testing.T) {
		store, mock := setupPostgresStore(t)

		mock.ExpectQuery(`SELECT (.+) FROM hyperlinks`).
			WithArgs("alice").
			WillReturnError(errUnknown)

		list, err := store.List(context.TODO(), "alice")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.Nil(t, list)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		store, mock := setupPostgresStore(t)

		mock.ExpectQuery(`SELECT (.+) FROM hyperlinks`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(columns))

		list, err := store.List(context.TODO(), "alice")

		assert.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		store, mock := setupPostgresStore(t)

		rows := sqlmock.NewRows(columns).
			AddRow("b", "https://example.com/b", "", false, "alice", created.Add(time.Hour), created.Add(time.Hour)).
			AddRow("a", "https://example.com/a", "A", true, "alice", created, created)

		mock.ExpectQuery(`SELECT (.+) FROM hyperlinks`).
			WithArgs("alice").
			WillReturnRows(rows)

		list, err := store.List(context.TODO(), "alice")

		assert.NoError(t, err)
		assert.Len(t, list, 2)
		assert.Equal(t, "b", list[0].ID)
		assert.Equal(t, domain.Hyperlink{
			ID:        "a",
			URL:       "https://example.com/a",
			Title:     "A",
			Visited:   true,
			Owner:     "alice",
			CreatedOn: created,
			UpdatedOn: created,
		}, list[1])
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Upsert(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Minute)

	h := domain.Hyperlink{
		ID:        "abc",
		URL:       "https://example.com",
		Owner:     "alice",
		CreatedOn: updated,
		UpdatedOn: updated,
	}

	t.Run("unknown error", func(t *testing.T) {
		store, mock := setupPostgresStore(t)

		mock.ExpectQuery(`INSERT INTO hyperlinks`).
			WithArgs("abc", "https://example.com", "", false, "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(errUnknown)

		_, err := store.Upsert(context.TODO(), h)

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps first seen created_on", func(t *testing.T) {
		store, mock := setupPostgresStore(t)

		rows := sqlmock.NewRows(columns).
			AddRow("abc", "https://example.com", "", false, "alice", created, updated)

		mock.ExpectQuery(`INSERT INTO hyperlinks (.+) ON CONFLICT \(id\) DO UPDATE`).
			WithArgs("abc", "https://example.com", "", false, "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(rows)

		got, err := store.Upsert(context.TODO(), h)

		assert.NoError(t, err)
		assert.Equal(t, created, got.CreatedOn)
		assert.Equal(t, updated, got.UpdatedOn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Delete(t *testing.T) {
	t.Run("unknown error", func(t *testing.T) {
		store, mock := setupPostgresStore(t)

		mock.ExpectExec(`DELETE FROM hyperlinks`).
			WithArgs("abc").
			WillReturnError(errUnknown)

		err := store.Delete(context.TODO(), "abc")

		assert.Error(t, err)
		assert.ErrorIs(t, err, errUnknown)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing id is not an error", func(t *testing.T) {
		store, mock := setupPostgresStore(t)

		mock.ExpectExec(`DELETE FROM hyperlinks`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Delete(context.TODO(), "missing")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
