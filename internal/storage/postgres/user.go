package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	"github.com/lib/pq"

	"github.com/VitaminP8/bookshelf/internal/apperrors"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/models"
)

type UserPostgresStorage struct {
	db *gorm.DB
}

func NewUserPostgresStorage(db *gorm.DB) *UserPostgresStorage {
	return &UserPostgresStorage{db: db}
}

func (s *UserPostgresStorage) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	u, err := user.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	rec := &userRecord{
		Username: u.Username,
		Email:    u.Email,
		Password: u.Password,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// проверка - существует ли такой пользователь
		var existUser userRecord
		err := tx.Where("email = ?", email).First(&existUser).Error
		if err == nil {
			return apperrors.AlreadyExistsf("user with email %s already exists", email)
		}
		if !gorm.IsRecordNotFoundError(err) {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		err = tx.Create(rec).Error
		// параллельная регистрация с тем же email упирается в уникальный индекс
		if isUniqueViolation(err) {
			return apperrors.AlreadyExistsf("user with email %s already exists", email)
		}
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return rec.toModel(nil), nil
}

func (s *UserPostgresStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	userID, ok := parseID(id)
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return s.loadUser(s.db, userID)
}

func (s *UserPostgresStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec userRecord
	err := s.db.Where("email = ?", email).First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not get user by email: %w", err)
	}

	books, err := s.savedBooks(s.db, rec.ID)
	if err != nil {
		return nil, err
	}

	u := rec.toModel(books)
	u.Password = rec.Password
	return u, nil
}

func (s *UserPostgresStorage) AddSavedBook(ctx context.Context, userID string, book models.Book) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := parseID(userID)
	if !ok {
		return nil, user.ErrUserNotFound
	}

	var result *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, id); err != nil {
			return err
		}

		rec := newSavedBookRecord(id, book)

		var existing savedBookRecord
		err := tx.Where(
			"user_id = ? AND book_id = ? AND authors = ? AND description = ? AND title = ? AND image = ? AND link = ?",
			rec.UserID, rec.BookID, rec.Authors, rec.Description, rec.Title, rec.Image, rec.Link,
		).First(&existing).Error
		switch {
		case gorm.IsRecordNotFoundError(err):
			if err := tx.Create(rec).Error; err != nil {
				return fmt.Errorf("could not save book: %w", err)
			}
		case err != nil:
			return fmt.Errorf("could not check saved book: %w", err)
		}

		u, err := s.loadUser(tx, id)
		if err != nil {
			return err
		}
		result = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *UserPostgresStorage) RemoveSavedBook(ctx context.Context, userID, bookID string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id, ok := parseID(userID)
	if !ok {
		return nil, user.ErrUserNotFound
	}

	var result *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, id); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND book_id = ?", id, bookID).Delete(&savedBookRecord{})
		if res.Error != nil {
			return fmt.Errorf("could not remove book: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("remove book %s: %w", bookID, user.ErrSavedBookNotFound)
		}

		u, err := s.loadUser(tx, id)
		if err != nil {
			return err
		}
		result = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockUser checks the user exists and, on PostgreSQL, serializes saved-list
// changes for that user until the transaction ends.
func lockUser(tx *gorm.DB, id uint) error {
	q := tx
	if tx.Dialect().GetName() == "postgres" {
		q = tx.Set("gorm:query_option", "FOR UPDATE")
	}

	var rec userRecord
	err := q.Where("id = ?", id).First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return user.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("could not get user by id: %w", err)
	}
	return nil
}

func (s *UserPostgresStorage) loadUser(db *gorm.DB, id uint) (*models.User, error) {
	var rec userRecord
	err := db.Where("id = ?", id).First(&rec).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}

	books, err := s.savedBooks(db, id)
	if err != nil {
		return nil, err
	}
	return rec.toModel(books), nil
}

func (s *UserPostgresStorage) savedBooks(db *gorm.DB, userID uint) ([]savedBookRecord, error) {
	var books []savedBookRecord
	err := db.Where("user_id = ?", userID).Order("id asc").Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("could not get saved books: %w", err)
	}
	return books, nil
}

// isUniqueViolation recognises a unique index violation from PostgreSQL (23505)
// or from the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
