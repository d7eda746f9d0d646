package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/models"
)

func TestWithIdentityAndGetIdentityFromContext(t *testing.T) {
	t.Run("Store and retrieve identity from context", func(t *testing.T) {
		id := Identity{UserID: "u-123", Username: "reader", Email: "reader@example.com"}
		ctx := WithIdentity(context.Background(), id)

		retrieved, err := GetIdentityFromContext(ctx)
		assert.NoError(t, err)
		assert.Equal(t, id, retrieved)
	})

	t.Run("Error when identity not in context", func(t *testing.T) {
		_, err := GetIdentityFromContext(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found in context")
	})

	t.Run("Error when context value has wrong type", func(t *testing.T) {
		// Создаем контекст с неправильным типом значения
		ctx := context.WithValue(context.Background(), identityKey, "not-an-identity")

		_, err := GetIdentityFromContext(ctx)
		assert.Error(t, err)
	})

	t.Run("Error when identity has no user id", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), Identity{Email: "x@example.com"})

		_, err := GetIdentityFromContext(ctx)
		assert.Error(t, err)
	})
}

func TestRequireIdentity(t *testing.T) {
	t.Run("Returns identity when present", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), Identity{UserID: "u-1"})

		id, err := RequireIdentity(ctx, "Not logged in")
		require.NoError(t, err)
		assert.Equal(t, "u-1", id.UserID)
	})

	t.Run("Unauthenticated error carries message", func(t *testing.T) {
		_, err := RequireIdentity(context.Background(), "You need to be logged in!")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthenticated))
		assert.Equal(t, "You need to be logged in!", err.Error())
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	t.Run("Valid Bearer token", func(t *testing.T) {
		assert.Equal(t, "token123", extractTokenFromHeader("Bearer token123"))
	})

	t.Run("Invalid format - no Bearer prefix", func(t *testing.T) {
		assert.Equal(t, "", extractTokenFromHeader("NotBearer token123"))
	})

	t.Run("Invalid format - no space", func(t *testing.T) {
		assert.Equal(t, "", extractTokenFromHeader("Bearertoken123"))
	})

	t.Run("Empty header", func(t *testing.T) {
		assert.Equal(t, "", extractTokenFromHeader(""))
	})
}

func TestMiddleware(t *testing.T) {
	// Тестовый обработчик, который проверяет наличие identity в контексте
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetIdentityFromContext(r.Context())
		if err == nil {
			fmt.Fprintf(w, "User ID: %s", id.UserID)
		} else {
			fmt.Fprint(w, "No user ID in context")
		}
	})

	const testSecret = "test_jwt_secret"
	tokens, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	handler := Middleware(tokens)(testHandler)

	serve := func(authHeader string) string {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Body.String()
	}

	t.Run("Valid token", func(t *testing.T) {
		tokenString, err := tokens.SignToken(&models.User{ID: "u-123", Username: "reader", Email: "reader@example.com"})
		require.NoError(t, err)

		assert.Equal(t, "User ID: u-123", serve("Bearer "+tokenString))
	})

	t.Run("Invalid token signature", func(t *testing.T) {
		// Токен, подписанный другим секретом
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserID: "u-123",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		tokenString, err := token.SignedString([]byte("wrong_secret"))
		require.NoError(t, err)

		assert.Equal(t, "No user ID in context", serve("Bearer "+tokenString))
	})

	t.Run("Expired token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			UserID: "u-123",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		tokenString, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		assert.Equal(t, "No user ID in context", serve("Bearer "+tokenString))
	})

	t.Run("No token", func(t *testing.T) {
		assert.Equal(t, "No user ID in context", serve(""))
	})

	t.Run("Invalid token format", func(t *testing.T) {
		assert.Equal(t, "No user ID in context", serve("InvalidFormat"))
	})
}
