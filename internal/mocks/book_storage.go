package mocks

import (
	"context"
	"sync"

	"github.com/VitaminP8/bookshelf/models"
)

// MockBookStorage отдает заранее заданные книги (Books упорядочены от новых к старым)
type MockBookStorage struct {
	mu sync.Mutex

	Books      []*models.Book
	Err        error
	LastFilter *models.BookFilter
}

func NewMockBookStorage(books ...*models.Book) *MockBookStorage {
	return &MockBookStorage{Books: books}
}

func (m *MockBookStorage) FindBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastFilter = &filter
	if m.Err != nil {
		return nil, m.Err
	}

	result := []*models.Book{}
	for _, b := range m.Books {
		if filter.Match(*b) {
			result = append(result, b)
		}
	}
	return result, nil
}
