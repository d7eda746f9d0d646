package user

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
)

func TestNewUser(t *testing.T) {
	t.Run("Hashes password", func(t *testing.T) {
		u, err := NewUser("reader", "reader@example.com", "password123")
		require.NoError(t, err)
		assert.NotEqual(t, "password123", u.Password)
		assert.True(t, u.IsCorrectPassword("password123"))
		assert.False(t, u.IsCorrectPassword("wrong"))
		assert.Empty(t, u.SavedBooks)
		assert.False(t, u.CreatedAt.IsZero())
	})

	t.Run("Rejects invalid email", func(t *testing.T) {
		_, err := NewUser("reader", "nope", "password123")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})

	t.Run("Rejects empty password", func(t *testing.T) {
		_, err := NewUser("reader", "reader@example.com", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "password is required")
	})

	t.Run("Username is optional", func(t *testing.T) {
		u, err := NewUser("", "a@b.com", "x")
		require.NoError(t, err)
		assert.True(t, u.IsCorrectPassword("x"))
	})
}
