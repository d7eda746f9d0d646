package mocks

import (
	"errors"

	"github.com/VitaminP8/bookshelf/models"
)

// MockTokenSigner генерирует JWT-подобный токен (для тестов просто строка)
type MockTokenSigner struct {
	Err error
}

func (m *MockTokenSigner) SignToken(user *models.User) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if user == nil || user.ID == "" {
		return "", errors.New("user without id")
	}
	return "jwt-token-for-user-" + user.ID, nil
}
