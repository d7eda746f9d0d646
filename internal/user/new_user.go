package user

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/VitaminP8/bookshelf/internal/validation"
	"github.com/VitaminP8/bookshelf/models"
)

// PasswordCost is the bcrypt cost used for new accounts.
var PasswordCost = bcrypt.DefaultCost

// NewUser validates signup fields and returns a user holding the bcrypt hash.
// Stores call it before inserting.
func NewUser(username, email, password string) (*models.User, error) {
	u := &models.User{
		Username:   username,
		Email:      email,
		Password:   password,
		SavedBooks: []models.Book{},
		CreatedAt:  time.Now().UTC(),
	}
	if err := validation.Struct(u); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = string(hashedPassword)
	return u, nil
}
