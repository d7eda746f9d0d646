package mocks

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/models"
)

// MockUserStorage реализует интерфейс user.UserStorage для тестирования
type MockUserStorage struct {
	mu     sync.Mutex
	users  map[string]*models.User // id -> user
	emails map[string]string       // email -> id
	nextID int

	// Err, если задан, возвращается из каждого метода
	Err error
	// Calls считает вызовы по имени метода
	Calls map[string]int
}

// NewMockUserStorage создает новый экземпляр мока для хранилища пользователей
func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		users:  make(map[string]*models.User),
		emails: make(map[string]string),
		nextID: 1,
		Calls:  make(map[string]int),
	}
}

func (m *MockUserStorage) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls["CreateUser"]++
	if m.Err != nil {
		return nil, m.Err
	}

	if _, exists := m.emails[email]; exists {
		return nil, apperrors.AlreadyExistsf("user with email %s already exists", email)
	}

	// минимальная стоимость, чтобы тесты были быстрыми
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	id := strconv.Itoa(m.nextID)
	m.nextID++

	u := &models.User{
		ID:         id,
		Username:   username,
		Email:      email,
		Password:   string(hash),
		SavedBooks: []models.Book{},
	}
	m.users[id] = u
	m.emails[email] = id

	return u.Public(), nil
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls["GetUserByID"]++
	if m.Err != nil {
		return nil, m.Err
	}

	u, exists := m.users[id]
	if !exists {
		return nil, user.ErrUserNotFound
	}
	return u.Public(), nil
}

func (m *MockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls["GetUserByEmail"]++
	if m.Err != nil {
		return nil, m.Err
	}

	id, exists := m.emails[email]
	if !exists {
		return nil, user.ErrUserNotFound
	}
	cp := *m.users[id]
	return &cp, nil
}

func (m *MockUserStorage) AddSavedBook(ctx context.Context, userID string, book models.Book) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls["AddSavedBook"]++
	if m.Err != nil {
		return nil, m.Err
	}

	u, exists := m.users[userID]
	if !exists {
		return nil, user.ErrUserNotFound
	}
	for _, saved := range u.SavedBooks {
		if saved.SamePayload(book) {
			return u.Public(), nil
		}
	}
	u.SavedBooks = append(u.SavedBooks, book)
	return u.Public(), nil
}

func (m *MockUserStorage) RemoveSavedBook(ctx context.Context, userID, bookID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls["RemoveSavedBook"]++
	if m.Err != nil {
		return nil, m.Err
	}

	u, exists := m.users[userID]
	if !exists {
		return nil, user.ErrUserNotFound
	}

	kept := make([]models.Book, 0, len(u.SavedBooks))
	for _, b := range u.SavedBooks {
		if b.BookID != bookID {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(u.SavedBooks) {
		return nil, user.ErrSavedBookNotFound
	}
	u.SavedBooks = kept
	return u.Public(), nil
}
