package graph

// This file will be automatically regenerated based on the schema, any resolver implementations
// will be copied through when generating and any unknown code will be moved to the end.

import (
	"context"

	"github.com/VitaminP8/bookshelf/graph/generated"
	"github.com/VitaminP8/bookshelf/internal/auth"
	"github.com/VitaminP8/bookshelf/internal/library"
	"github.com/VitaminP8/bookshelf/models"
)

// AddUser is the resolver for the addUser field.
func (r *mutationResolver) AddUser(ctx context.Context, username *string, email string, password string) (*models.Auth, error) {
	var name string
	if username != nil {
		name = *username
	}
	return r.Library.AddUser(ctx, name, email, password)
}

// Login is the resolver for the login field.
func (r *mutationResolver) Login(ctx context.Context, email string, password string) (*models.Auth, error) {
	return r.Library.Login(ctx, email, password)
}

// SaveBook is the resolver for the saveBook field.
func (r *mutationResolver) SaveBook(ctx context.Context, saveBookInput models.BookInput) (*models.User, error) {
	id, err := auth.RequireIdentity(ctx, library.MsgLoginRequired)
	if err != nil {
		return nil, err
	}
	return r.Library.SaveBook(ctx, id, saveBookInput)
}

// RemoveBook is the resolver for the removeBook field.
func (r *mutationResolver) RemoveBook(ctx context.Context, bookID string) (*models.User, error) {
	id, err := auth.RequireIdentity(ctx, library.MsgLoginRequired)
	if err != nil {
		return nil, err
	}
	return r.Library.RemoveBook(ctx, id, bookID)
}

// Me is the resolver for the me field.
func (r *queryResolver) Me(ctx context.Context) (*models.User, error) {
	id, err := auth.RequireIdentity(ctx, library.MsgNotLoggedIn)
	if err != nil {
		return nil, err
	}
	return r.Library.Me(ctx, id)
}

// SavedBooks is the resolver for the savedBooks field.
func (r *queryResolver) SavedBooks(ctx context.Context, authors []string) ([]*models.Book, error) {
	return r.Library.SavedBooks(ctx, authors)
}

// Mutation returns generated.MutationResolver implementation.
func (r *Resolver) Mutation() generated.MutationResolver { return &mutationResolver{r} }

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
