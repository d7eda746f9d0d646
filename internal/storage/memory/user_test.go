package memory

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/models"
)

func init() {
	user.PasswordCost = bcrypt.MinCost
}

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

func TestUserMemoryStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	storage := NewUserMemoryStorage(NewBookMemoryStorage())

	t.Run("Successful user registration", func(t *testing.T) {
		u, err := storage.CreateUser(ctx, "testuser", "test@example.com", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Equal(t, "testuser", u.Username)
		assert.Equal(t, "test@example.com", u.Email)
		assert.Empty(t, u.Password)
		assert.Equal(t, 0, u.BookCount())
	})

	t.Run("Register user with duplicate email", func(t *testing.T) {
		_, err := storage.CreateUser(ctx, "first", "duplicate@example.com", "password123")
		require.NoError(t, err)

		_, err = storage.CreateUser(ctx, "second", "duplicate@example.com", "anotherpassword")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("Invalid email is rejected", func(t *testing.T) {
		_, err := storage.CreateUser(ctx, "bad", "bad-email", "password123")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})
}

func TestUserMemoryStorage_Lookups(t *testing.T) {
	ctx := context.Background()
	storage := NewUserMemoryStorage(nil)

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
		assert.True(t, u.IsCorrectPassword("loginpassword123"))
		assert.False(t, u.IsCorrectPassword("wrongpassword"))
	})

	t.Run("Email lookup is exact match", func(t *testing.T) {
		_, err := storage.GetUserByEmail(ctx, "LOGIN@example.com")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := storage.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestUserMemoryStorage_SavedBooks(t *testing.T) {
	ctx := context.Background()
	books := NewBookMemoryStorage()
	storage := NewUserMemoryStorage(books)

	u, err := storage.CreateUser(ctx, "reader", "reader@example.com", "password123")
	require.NoError(t, err)

	t.Run("Save twice keeps one entry", func(t *testing.T) {
		updated, err := storage.AddSavedBook(ctx, u.ID, dune())
		require.NoError(t, err)
		assert.Equal(t, 1, updated.BookCount())

		updated, err = storage.AddSavedBook(ctx, u.ID, dune())
		require.NoError(t, err)
		assert.Equal(t, 1, updated.BookCount())
		assert.Empty(t, updated.SavedBooks[0].UserID)

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
		_, err := storage.AddSavedBook(ctx, "missing", dune())
		assert.ErrorIs(t, err, user.ErrUserNotFound)

		_, err = storage.RemoveSavedBook(ctx, "missing", "dune-1")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("Returned user is a copy", func(t *testing.T) {
		current, err := storage.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		current.SavedBooks[0].Title = "changed"

		again, err := storage.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", again.SavedBooks[0].Title)
	})
}

func TestUserMemoryStorage_ConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	storage := NewUserMemoryStorage(NewBookMemoryStorage())

	t.Run("Concurrent user registration", func(t *testing.T) {
		var wg sync.WaitGroup
		numGoroutines := 10

		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()

				email := "concurrent" + strconv.Itoa(idx) + "@example.com"
				u, err := storage.CreateUser(ctx, "user"+strconv.Itoa(idx), email, "pass"+strconv.Itoa(idx))

				assert.NoError(t, err)
				if err == nil {
					assert.Equal(t, email, u.Email)
				}
			}(i)
		}

		wg.Wait()
	})

	t.Run("Concurrent saves of the same book", func(t *testing.T) {
		u, err := storage.CreateUser(ctx, "saver", "saver@example.com", "password123")
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := storage.AddSavedBook(ctx, u.ID, dune())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		current, err := storage.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, current.BookCount())
	})
}
