// Package storetest holds the behavior every store.LocalStore backend must
// share. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/savelater/internal/domain"
	"github.com/MrSnakeDoc/savelater/internal/store"
)

// Factory returns a fresh, not yet initialized backend.
type Factory func(t *testing.T) store.LocalStore

// Run executes the contract against backends produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("not initialized", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetAll(ctx)
		assert.ErrorIs(t, err, domain.ErrStoreNotInitialized)
		assert.ErrorIs(t, s.Upsert(ctx, Sample("a")), domain.ErrStoreNotInitialized)
		assert.ErrorIs(t, s.Delete(ctx, "a"), domain.ErrStoreNotInitialized)
		assert.ErrorIs(t, s.Wipe(ctx), domain.ErrStoreNotInitialized)
	})

	t.Run("init is idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.Init(ctx))
		require.NoError(t, s.Upsert(ctx, Sample("a")))
		require.NoError(t, s.Init(ctx))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1, "second Init must not drop records")
	})

	t.Run("upsert round trip keeps every field", func(t *testing.T) {
		s := initialized(t, newStore)
		ctx := context.Background()

		h := Sample("round-trip")
		h.Title = "Read me"
		h.Visited = true
		h.Owner = "alice"
		h.Dirty = true
		h.Deleted = true
		require.NoError(t, s.Upsert(ctx, h))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Contains(t, all, h.ID)
		AssertSame(t, h, all[h.ID])
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		s := initialized(t, newStore)
		ctx := context.Background()

		h := Sample("replace")
		require.NoError(t, s.Upsert(ctx, h))

		h.URL = "https://example.org/changed"
		h.Dirty = false
		require.NoError(t, s.Upsert(ctx, h))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "https://example.org/changed", all[h.ID].URL)
		assert.False(t, all[h.ID].Dirty)
	})

	t.Run("delete removes only the given id", func(t *testing.T) {
		s := initialized(t, newStore)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, Sample("keep")))
		require.NoError(t, s.Upsert(ctx, Sample("drop")))
		require.NoError(t, s.Delete(ctx, "drop"))
		require.NoError(t, s.Delete(ctx, "never-existed"))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
		assert.Contains(t, all, "keep")
	})

	t.Run("wipe clears everything and store stays usable", func(t *testing.T) {
		s := initialized(t, newStore)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, Sample("a")))
		require.NoError(t, s.Upsert(ctx, Sample("b")))
		require.NoError(t, s.Wipe(ctx))

		all, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		require.NoError(t, s.Upsert(ctx, Sample("c")))
		all, err = s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

// Sample returns a valid clean record with second-precision UTC timestamps.
func Sample(id string) domain.Hyperlink {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.Hyperlink{
		ID:        id,
		URL:       "https://example.com/" + id,
		CreatedOn: created,
		UpdatedOn: created.Add(time.Minute),
	}
}

// AssertSame compares records field by field, timestamps by instant.
func AssertSame(t *testing.T, want, got domain.Hyperlink) {
	t.Helper()

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.URL, got.URL)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Visited, got.Visited)
	assert.Equal(t, want.Owner, got.Owner)
	assert.Equal(t, want.Dirty, got.Dirty)
	assert.Equal(t, want.Deleted, got.Deleted)
	assert.True(t, want.CreatedOn.Equal(got.CreatedOn), "CreatedOn: want %v, got %v", want.CreatedOn, got.CreatedOn)
	assert.True(t, want.UpdatedOn.Equal(got.UpdatedOn), "UpdatedOn: want %v, got %v", want.UpdatedOn, got.UpdatedOn)
}

func initialized(t *testing.T, newStore Factory) store.LocalStore {
	t.Helper()

	s := newStore(t)
	require.NoError(t, s.Init(context.Background()))
	return s
}

// Failing wraps a LocalStore and fails the selected operations.
type Failing struct {
	store.LocalStore

	FailGetAll bool
	FailUpsert bool
	FailDelete bool
	FailWipe   bool
}

// ErrInjected is returned by Failing for every injected failure.
var ErrInjected = errors.New("injected store failure")

func (f *Failing) GetAll(ctx context.Context) (map[string]domain.Hyperlink, error) {
	if f.FailGetAll {
		return nil, ErrInjected
	}
	return f.LocalStore.GetAll(ctx)
}

func (f *Failing) Upsert(ctx context.Context, h domain.Hyperlink) error {
	if f.FailUpsert {
		return ErrInjected
	}
	return f.LocalStore.Upsert(ctx, h)
}

func (f *Failing) Delete(ctx context.Context, id string) error {
	if f.FailDelete {
		return ErrInjected
	}
	return f.LocalStore.Delete(ctx, id)
}

func (f *Failing) Wipe(ctx context.Context) error {
	if f.FailWipe {
		return ErrInjected
	}
	return f.LocalStore.Wipe(ctx)
}
