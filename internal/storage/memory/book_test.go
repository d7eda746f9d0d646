package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/bookshelf/models"
)

func TestBookMemoryStorage_FindBooks(t *testing.T) {
	ctx := context.Background()
	books := NewBookMemoryStorage()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	books.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	books.add("u1", models.Book{BookID: "a", Title: "First", Authors: []string{"Jane Doe"}})
	books.add("u2", models.Book{BookID: "b", Title: "Second", Authors: []string{"John Roe"}})
	books.add("u1", models.Book{BookID: "c", Title: "Third", Authors: []string{"Jane Doe"}})
	books.add("u2", models.Book{BookID: "d", Title: "Fourth", Authors: []string{"Jane Doe", "John Roe"}})

	t.Run("No filter returns everything newest first", func(t *testing.T) {
		all, err := books.FindBooks(ctx, models.BookFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, []string{"d", "c", "b", "a"}, bookIDs(all))
		for i := 1; i < len(all); i++ {
			assert.True(t, all[i-1].CreatedAt.After(all[i].CreatedAt))
		}
	})

	t.Run("Authors filter matches the exact sequence", func(t *testing.T) {
		found, err := books.FindBooks(ctx, models.BookFilter{Authors: []string{"Jane Doe"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, bookIDs(found))
	})

	t.Run("No match returns empty slice", func(t *testing.T) {
		found, err := books.FindBooks(ctx, models.BookFilter{Authors: []string{"Nobody"}})
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("Remove only touches one owner", func(t *testing.T) {
		books.remove("u1", "d")
		all, err := books.FindBooks(ctx, models.BookFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)

		books.remove("u2", "d")
		all, err = books.FindBooks(ctx, models.BookFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a"}, bookIDs(all))
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := books.FindBooks(cctx, models.BookFilter{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func bookIDs(books []*models.Book) []string {
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.BookID)
	}
	return ids
}
