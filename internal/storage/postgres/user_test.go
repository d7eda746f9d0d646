package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/models"
)

func dune() models.Book {
	return models.Book{
		BookID:      "dune-1",
		Authors:     []string{"Frank Herbert"},
		Description: "Desert planet",
		Title:       "Dune",
		Image:       "https://img.example.com/dune.jpg",
		Link:        "https://books.example.com/dune",
	}
}

func TestUserPostgresStorage_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful user registration", func(t *testing.T) {
		storage := NewUserPostgresStorage(setupTestDB(t))

		u, err := storage.CreateUser(ctx, "testuser", "test@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "testuser", u.Username)
		assert.Equal(t, "test@example.com", u.Email)
		assert.Empty(t, u.Password)
		assert.Equal(t, 0, u.BookCount())
	})

	t.Run("Register user with duplicate email", func(t *testing.T) {
		storage := NewUserPostgresStorage(setupTestDB(t))

		_, err := storage.CreateUser(ctx, "first", "duplicate@example.com", "password123")
		require.NoError(t, err)

		_, err = storage.CreateUser(ctx, "second", "duplicate@example.com", "anotherpassword")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("Validation runs before insert", func(t *testing.T) {
		db := setupTestDB(t)
		storage := NewUserPostgresStorage(db)

		_, err := storage.CreateUser(ctx, "bad", "not-an-email", "password123")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))

		var count int
		require.NoError(t, db.Model(&userRecord{}).Count(&count).Error)
		assert.Equal(t, 0, count)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("PostgreSQL unique violation", func(t *testing.T) {
		assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
		assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	})

	t.Run("SQLite unique index", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, db.Create(&userRecord{Email: "race@example.com", Password: "hash"}).Error)

		err := db.Create(&userRecord{Email: "race@example.com", Password: "hash"}).Error
		require.Error(t, err)
		assert.True(t, isUniqueViolation(err))
	})

	t.Run("Other errors", func(t *testing.T) {
		assert.False(t, isUniqueViolation(nil))
		assert.False(t, isUniqueViolation(errors.New("connection refused")))
	})
}

func TestUserPostgresStorage_Lookups(t *testing.T) {
	ctx := context.Background()
	storage := NewUserPostgresStorage(setupTestDB(t))

	created, err := storage.CreateUser(ctx, "loginuser", "login@example.com", "loginpassword123")
	require.NoError(t, err)

	t.Run("By id has no password", func(t *testing.T) {
		u, err := storage.GetUserByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, u.ID)
		assert.Empty(t, u.Password)
	})

	t.Run("By email keeps hash for verification", func(t *testing.T) {
		u, err := storage.GetUserByEmail(ctx, "login@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, u.ID)
		assert.True(t, u.IsCorrectPassword("loginpassword123"))
		assert.False(t, u.IsCorrectPassword("wrongpassword"))
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, err := storage.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("Malformed and unknown ids", func(t *testing.T) {
		_, err := storage.GetUserByID(ctx, "not-a-number")
		assert.ErrorIs(t, err, user.ErrUserNotFound)

		_, err = storage.GetUserByID(ctx, "9999")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestUserPostgresStorage_SavedBooks(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	storage := NewUserPostgresStorage(db)
	books := NewBookPostgresStorage(db)

	u, err := storage.CreateUser(ctx, "reader", "reader@example.com", "password123")
	require.NoError(t, err)

	t.Run("Save twice keeps one entry", func(t *testing.T) {
		updated, err := storage.AddSavedBook(ctx, u.ID, dune())
		require.NoError(t, err)
		require.Equal(t, 1, updated.BookCount())
		assert.Equal(t, []string{"Frank Herbert"}, updated.SavedBooks[0].Authors)
		assert.Empty(t, updated.SavedBooks[0].UserID)

		updated, err = storage.AddSavedBook(ctx, u.ID, dune())
		require.NoError(t, err)
		assert.Equal(t, 1, updated.BookCount())

		all, err := books.FindBooks(ctx, models.BookFilter{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, u.ID, all[0].UserID)
	})

	t.Run("Different payload with same bookId is a separate entry", func(t *testing.T) {
		other := dune()
		other.Description = "Second edition"

		updated, err := storage.AddSavedBook(ctx, u.ID, other)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.BookCount())
	})

	t.Run("Remove pulls every entry with bookId", func(t *testing.T) {
		updated, err := storage.RemoveSavedBook(ctx, u.ID, "dune-1")
		require.NoError(t, err)
		assert.Equal(t, 0, updated.BookCount())

		all, err := books.FindBooks(ctx, models.BookFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("Remove missing book is not found and leaves list unchanged", func(t *testing.T) {
		_, err := storage.AddSavedBook(ctx, u.ID, dune())
		require.NoError(t, err)

		_, err = storage.RemoveSavedBook(ctx, u.ID, "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, user.ErrSavedBookNotFound)

		current, err := storage.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, current.BookCount())
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := storage.AddSavedBook(ctx, "9999", dune())
		assert.ErrorIs(t, err, user.ErrUserNotFound)

		_, err = storage.RemoveSavedBook(ctx, "9999", "dune-1")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
