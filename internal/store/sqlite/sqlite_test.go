package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/store"
	"github.com/MrSnakeDoc/savelater/internal/store/storetest"
)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()

	s := New(path)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.LocalStore {
		return newTestStore(t, filepath.Join(t.TempDir(), "links.db"))
	})
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "links.db")

	first := New(path)
	require.NoError(t, first.Init(ctx))

	h := storetest.Sample("durable")
	h.Dirty = true
	h.CreatedOn = time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	require.NoError(t, first.Upsert(ctx, h))
	require.NoError(t, first.Close())

	second := newTestStore(t, path)
	require.NoError(t, second.Init(ctx))

	all, err := second.GetAll(ctx)
	require.NoError(t, err)
	require.Contains(t, all, "durable")
	storetest.AssertSame(t, h, all["durable"])
}

func TestRecordConversion(t *testing.T) {
	h := storetest.Sample("conv")
	h.Visited = true
	h.Deleted = true

	rec := toRecord(h)
	assert.Equal(t, 1, rec.Visited)
	assert.Equal(t, 0, rec.Dirty)
	assert.Equal(t, 1, rec.Deleted)
	assert.Equal(t, "2024-03-01T12:00:00Z", rec.CreatedOn)

	back, err := rec.toHyperlink()
	require.NoError(t, err)
	storetest.AssertSame(t, h, back)
}

func TestRecordWithBadTimestamp(t *testing.T) {
	rec := hyperlinkRecord{ID: "bad", CreatedOn: "yesterday"}
	_, err := rec.toHyperlink()
	assert.Error(t, err)
}

func TestCloseBeforeInit(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "links.db"))
	assert.NoError(t, s.Close())

	_, err := s.GetAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreNotInitialized)
}
