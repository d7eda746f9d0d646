package models

import (
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email" validate:"required,email"`
	Password   string    `json:"-" validate:"required"`
	SavedBooks []Book    `json:"savedBooks"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BookCount is resolved as the User.bookCount field.
func (u *User) BookCount() int {
	return len(u.SavedBooks)
}

// IsCorrectPassword compares password against the stored bcrypt hash.
func (u *User) IsCorrectPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// Public returns a copy of the user without the password hash.
func (u *User) Public() *User {
	cp := *u
	cp.Password = ""
	cp.SavedBooks = slices.Clone(u.SavedBooks)
	return &cp
}

type Book struct {
	BookID      string    `json:"bookId" validate:"required"`
	Authors     []string  `json:"authors"`
	Description string    `json:"description"`
	Title       string    `json:"title" validate:"required"`
	Image       string    `json:"image"`
	Link        string    `json:"link"`
	UserID      string    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SamePayload reports whether two books carry identical saved content.
// Ownership and creation time are not part of the payload.
func (b Book) SamePayload(other Book) bool {
	return b.BookID == other.BookID &&
		slices.Equal(b.Authors, other.Authors) &&
		b.Description == other.Description &&
		b.Title == other.Title &&
		b.Image == other.Image &&
		b.Link == other.Link
}

// BookInput is the saveBook mutation payload.
type BookInput struct {
	BookID      string   `json:"bookId" validate:"required"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Title       string   `json:"title" validate:"required"`
	Image       *string  `json:"image"`
	Link        *string  `json:"link"`
}

// Book flattens the input into a saved book entry.
func (in BookInput) Book() Book {
	b := Book{
		BookID:      in.BookID,
		Authors:     slices.Clone(in.Authors),
		Description: in.Description,
		Title:       in.Title,
	}
	if in.Image != nil {
		b.Image = *in.Image
	}
	if in.Link != nil {
		b.Link = *in.Link
	}
	return b
}

type Auth struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// BookFilter selects entries from the book collection. A nil Authors matches everything;
// otherwise the authors sequence must match exactly.
type BookFilter struct {
	Authors []string
}

func (f BookFilter) Match(b Book) bool {
	if f.Authors == nil {
		return true
	}
	return slices.Equal(f.Authors, b.Authors)
}
