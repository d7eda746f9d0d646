package book

import (
	"context"

	"github.com/VitaminP8/bookshelf/models"
)

type BookStorage interface {
	// FindBooks returns saved book entries matching filter, newest first.
	FindBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, error)
}
