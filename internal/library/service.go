// Package library implements the book-tracking operations behind the GraphQL resolvers.
package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/internal/auth"
	"github.com/VitaminP8/bookshelf/internal/book"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/internal/validation"
	"github.com/VitaminP8/bookshelf/models"
)

const (
	MsgNotLoggedIn         = "Not logged in"
	MsgLoginRequired       = "You need to be logged in!"
	MsgIncorrectCredential = "Incorrect credentials"
)

// TokenSigner issues a credential for a user.
type TokenSigner interface {
	SignToken(user *models.User) (string, error)
}

type Service struct {
	users  user.UserStorage
	books  book.BookStorage
	tokens TokenSigner
}

func New(users user.UserStorage, books book.BookStorage, tokens TokenSigner) *Service {
	return &Service{users: users, books: books, tokens: tokens}
}

// Me returns the caller's profile with saved books.
func (s *Service) Me(ctx context.Context, id auth.Identity) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// SavedBooks lists saved book entries across users; nil authors means no filter.
func (s *Service) SavedBooks(ctx context.Context, authors []string) ([]*models.Book, error) {
	return s.books.FindBooks(ctx, models.BookFilter{Authors: authors})
}

func (s *Service) AddUser(ctx context.Context, username, email, password string) (*models.Auth, error) {
	u, err := s.users.CreateUser(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Login never reveals whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Auth, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Unauthenticated(MsgIncorrectCredential)
	}
	if err != nil {
		return nil, err
	}

	if !u.IsCorrectPassword(password) {
		return nil, apperrors.Unauthenticated(MsgIncorrectCredential)
	}
	return s.issue(u)
}

func (s *Service) SaveBook(ctx context.Context, id auth.Identity, in models.BookInput) (*models.User, error) {
	b := in.Book()
	if err := validation.Struct(b); err != nil {
		return nil, err
	}

	u, err := s.users.AddSavedBook(ctx, id.UserID, b)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (s *Service) RemoveBook(ctx context.Context, id auth.Identity, bookID string) (*models.User, error) {
	u, err := s.users.RemoveSavedBook(ctx, id.UserID, bookID)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (s *Service) issue(u *models.User) (*models.Auth, error) {
	token, err := s.tokens.SignToken(u)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.Auth{Token: token, User: u.Public()}, nil
}
