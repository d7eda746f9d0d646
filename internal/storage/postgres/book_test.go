package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/bookshelf/models"
)

func TestBookPostgresStorage_FindBooks(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	books := NewBookPostgresStorage(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []savedBookRecord{
		{UserID: 1, BookID: "a", Title: "First", Authors: encodeAuthors([]string{"Jane Doe"}), CreatedAt: base.Add(1 * time.Minute)},
		{UserID: 2, BookID: "b", Title: "Second", Authors: encodeAuthors([]string{"John Roe"}), CreatedAt: base.Add(2 * time.Minute)},
		{UserID: 1, BookID: "c", Title: "Third", Authors: encodeAuthors([]string{"Jane Doe"}), CreatedAt: base.Add(3 * time.Minute)},
		{UserID: 2, BookID: "d", Title: "Fourth", Authors: encodeAuthors([]string{"Jane Doe", "John Roe"}), CreatedAt: base.Add(4 * time.Minute)},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	t.Run("No filter returns everything newest first", func(t *testing.T) {
		all, err := books.FindBooks(ctx, models.BookFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"d", "c", "b", "a"}, bookIDs(all))
		assert.Equal(t, []string{"Jane Doe", "John Roe"}, all[0].Authors)
		assert.Equal(t, "2", all[0].UserID)
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
}

func bookIDs(books []*models.Book) []string {
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.BookID)
	}
	return ids
}
