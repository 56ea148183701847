package hyperlinkdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/savelater/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := domain.Hyperlink{ID: "a", URL: "https://example.com/a", Owner: "alice", CreatedOn: base, UpdatedOn: base}
	second := domain.Hyperlink{ID: "b", URL: "https://example.com/b", Owner: "alice", CreatedOn: base.Add(time.Hour), UpdatedOn: base}
	other := domain.Hyperlink{ID: "c", URL: "https://example.com/c", Owner: "bob", CreatedOn: base, UpdatedOn: base}

	for _, h := range []domain.Hyperlink{first, second, other} {
		_, err := s.Upsert(ctx, h)
		require.NoError(t, err)
	}

	t.Run("list filters by owner newest first", func(t *testing.T) {
		list, err := s.List(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "b", list[0].ID)
		assert.Equal(t, "a", list[1].ID)
	})

	t.Run("upsert keeps first seen created on", func(t *testing.T) {
		changed := first
		changed.URL = "https://example.com/changed"
		changed.CreatedOn = base.Add(48 * time.Hour)

		got, err := s.Upsert(ctx, changed)
		require.NoError(t, err)
		assert.Equal(t, base, got.CreatedOn)
		assert.Equal(t, "https://example.com/changed", got.URL)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "c"))
		require.NoError(t, s.Delete(ctx, "c"))

		list, err := s.List(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestCanonical(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.FixedZone("CEST", 2*3600))

	t.Run("stamps updated on and drops bookkeeping", func(t *testing.T) {
		in := domain.Hyperlink{ID: "a", URL: "https://example.com", Dirty: true, Deleted: true,
			CreatedOn: time.Date(2024, 1, 1, 0, 0, 0, 999999999, time.UTC)}

		got := Canonical(in, now)
		assert.False(t, got.Dirty)
		assert.False(t, got.Deleted)
		assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 123000000, time.UTC), got.UpdatedOn)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 999000000, time.UTC), got.CreatedOn)
	})

	t.Run("missing created on defaults to now", func(t *testing.T) {
		got := Canonical(domain.Hyperlink{ID: "a"}, now)
		assert.Equal(t, got.UpdatedOn, got.CreatedOn)
	})
}
