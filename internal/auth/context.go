// internal/auth/context.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
)

type contextKey string

const identityKey = contextKey("identity")

// Identity is the authenticated caller, derived from a verified token.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// Сохраняет identity в контексте
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Достает identity из контекста
func GetIdentityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, errors.New("identity not found in context")
	}
	return id, nil
}

// RequireIdentity is the capability check for resolvers that need a logged-in user.
// A missing identity becomes an UNAUTHENTICATED error carrying msg.
func RequireIdentity(ctx context.Context, msg string) (Identity, error) {
	id, err := GetIdentityFromContext(ctx)
	if err != nil {
		return Identity{}, apperrors.Unauthenticated(msg)
	}
	return id, nil
}

// Middleware verifies a Bearer token and stores the identity in the request context.
// Requests without a valid token pass through unauthenticated.
func Middleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := extractTokenFromHeader(r.Header.Get("Authorization"))
			if tokenStr == "" {
				next.ServeHTTP(w, r) // неавторизованный доступ, пропускаем
				return
			}

			id, err := tokens.Parse(tokenStr)
			if err != nil {
				next.ServeHTTP(w, r) // если невалидный токен, пропускаем
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(strings.TrimSpace(header), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
