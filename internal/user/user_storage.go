package user

import (
	"context"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/models"
)

// UserStorage is the user side of the data access layer.
//
// CreateUser validates and hashes the password. GetUserByEmail returns the stored hash
// so the caller can verify it; every other method returns users without it.
// Missing users are reported as ErrUserNotFound.
type UserStorage interface {
	CreateUser(ctx context.Context, username, email, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// AddSavedBook appends book to the user's saved list unless an identical entry exists.
	AddSavedBook(ctx context.Context, userID string, book models.Book) (*models.User, error)
	// RemoveSavedBook pulls every entry with bookID; NOT_FOUND when nothing matched.
	RemoveSavedBook(ctx context.Context, userID, bookID string) (*models.User, error)
}

var (
	ErrUserNotFound      = apperrors.NotFound("Couldn't find user with this id!")
	ErrSavedBookNotFound = apperrors.NotFound("Couldn't find book with this id!")
)
