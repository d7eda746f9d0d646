package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/VitaminP8/bookshelf/models"
)

// BookMemoryStorage is the book collection: one entry per book saved by a user.
// Entries are kept in insertion order.
type BookMemoryStorage struct {
	mu      sync.Mutex
	entries []*models.Book
	now     func() time.Time
}

func NewBookMemoryStorage() *BookMemoryStorage {
	return &BookMemoryStorage{now: time.Now}
}

func (s *BookMemoryStorage) FindBooks(ctx context.Context, filter models.BookFilter) ([]*models.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	books := []*models.Book{}
	// newest first; entries are appended so walk backwards
	for i := len(s.entries) - 1; i >= 0; i-- {
		if filter.Match(*s.entries[i]) {
			books = append(books, cloneBook(s.entries[i]))
		}
	}
	return books, nil
}

// add records b for userID and returns a copy of the stored entry.
func (s *BookMemoryStorage) add(userID string, b models.Book) models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := b
	entry.Authors = slices.Clone(b.Authors)
	entry.UserID = userID
	entry.CreatedAt = s.now().UTC()
	s.entries = append(s.entries, &entry)
	return *cloneBook(&entry)
}

func (s *BookMemoryStorage) remove(userID, bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = slices.DeleteFunc(s.entries, func(b *models.Book) bool {
		return b.UserID == userID && b.BookID == bookID
	})
}

func cloneBook(b *models.Book) *models.Book {
	cp := *b
	cp.Authors = slices.Clone(b.Authors)
	return &cp
}
