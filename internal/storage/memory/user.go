package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/models"
)

type UserMemoryStorage struct {
	mu     sync.Mutex
	users  map[string]*models.User // id -> user
	emails map[string]string       // email -> id
	books  *BookMemoryStorage
}

// NewUserMemoryStorage keeps books in sync with every saved-list change.
func NewUserMemoryStorage(books *BookMemoryStorage) *UserMemoryStorage {
	if books == nil {
		books = NewBookMemoryStorage()
	}
	return &UserMemoryStorage{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		books:  books,
	}
}

func (s *UserMemoryStorage) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	// хешируем вне мьютекса: bcrypt медленный
	u, err := user.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[email]; exists {
		return nil, apperrors.AlreadyExistsf("user with email %s already exists", email)
	}

	u.ID = uuid.NewString()
	s.users[u.ID] = u
	s.emails[email] = u.ID

	return u.Public(), nil
}

func (s *UserMemoryStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, user.ErrUserNotFound
	}
	return u.Public(), nil
}

func (s *UserMemoryStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.emails[email]
	if !exists {
		return nil, user.ErrUserNotFound
	}
	cp := *s.users[id]
	cp.SavedBooks = slices.Clone(cp.SavedBooks)
	return &cp, nil
}

func (s *UserMemoryStorage) AddSavedBook(ctx context.Context, userID string, book models.Book) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[userID]
	if !exists {
		return nil, user.ErrUserNotFound
	}

	for _, saved := range u.SavedBooks {
		if saved.SamePayload(book) {
			return u.Public(), nil
		}
	}

	entry := s.books.add(userID, book)
	entry.UserID = ""
	u.SavedBooks = append(u.SavedBooks, entry)

	return u.Public(), nil
}

func (s *UserMemoryStorage) RemoveSavedBook(ctx context.Context, userID, bookID string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[userID]
	if !exists {
		return nil, user.ErrUserNotFound
	}

	kept := slices.DeleteFunc(slices.Clone(u.SavedBooks), func(b models.Book) bool {
		return b.BookID == bookID
	})
	if len(kept) == len(u.SavedBooks) {
		return nil, fmt.Errorf("remove book %s: %w", bookID, user.ErrSavedBookNotFound)
	}

	u.SavedBooks = kept
	s.books.remove(userID, bookID)

	return u.Public(), nil
}
