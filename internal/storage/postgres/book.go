package postgres

import (
	"context"
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/bookshelf/models"
)

// BookPostgresStorage reads the saved_books table as the book collection.
type BookPostgresStorage struct {
	db *gorm.DB
}

func NewBookPostgresStorage(db *gorm.DB) *BookPostgresStorage {
	return &BookPostgresStorage{db: db}
}

func (s *BookPostgresStorage) FindBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := s.db.Order("created_at desc").Order("id desc")
	if filter.Authors != nil {
		q = q.Where("authors = ?", encodeAuthors(filter.Authors))
	}

	var records []savedBookRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("could not get books: %w", err)
	}

	results := make([]*models.Book, 0, len(records))
	for i := range records {
		b := records[i].toModel()
		results = append(results, &b)
	}
	return results, nil
}
