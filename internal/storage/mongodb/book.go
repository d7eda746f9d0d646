package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/VitaminP8/bookshelf/models"
)

type BookMongoStorage struct {
	db *DB
}

func NewBookMongoStorage(db *DB) *BookMongoStorage {
	return &BookMongoStorage{db: db}
}

func (s *BookMongoStorage) FindBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.db.Books().Find(ctx, bookFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("could not get books: %w", err)
	}
	defer cur.Close(ctx)

	var docs []bookDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode books: %w", err)
	}

	books := make([]*models.Book, 0, len(docs))
	for i := range docs {
		b := docs[i].toModel()
		books = append(books, &b)
	}
	return books, nil
}
