package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/VitaminP8/bookshelf/models"
)

type userRecord struct {
	ID        uint   `gorm:"primary_key"`
	Username  string
	Email     string `gorm:"unique;not null"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRecord) TableName() string { return "users" }

type savedBookRecord struct {
	ID          uint   `gorm:"primary_key"`
	UserID      uint   `gorm:"index;not null"`
	BookID      string `gorm:"index;not null"`
	Authors     string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
	Title       string
	Image       string
	Link        string
	CreatedAt   time.Time
}

func (savedBookRecord) TableName() string { return "saved_books" }

// encodeAuthors stores the authors list as a JSON array so the filter and the
// duplicate check compare whole sequences. nil and empty encode the same way.
func encodeAuthors(authors []string) string {
	if authors == nil {
		authors = []string{}
	}
	data, _ := json.Marshal(authors)
	return string(data)
}

func decodeAuthors(s string) []string {
	authors := []string{}
	if err := json.Unmarshal([]byte(s), &authors); err != nil || authors == nil {
		return []string{}
	}
	return authors
}

func parseID(id string) (uint, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (r *userRecord) toModel(books []savedBookRecord) *models.User {
	u := &models.User{
		ID:         fmt.Sprint(r.ID),
		Username:   r.Username,
		Email:      r.Email,
		SavedBooks: make([]models.Book, 0, len(books)),
		CreatedAt:  r.CreatedAt,
	}
	for _, b := range books {
		entry := b.toModel()
		entry.UserID = ""
		u.SavedBooks = append(u.SavedBooks, entry)
	}
	return u
}

func (r *savedBookRecord) toModel() models.Book {
	return models.Book{
		BookID:      r.BookID,
		Authors:     decodeAuthors(r.Authors),
		Description: r.Description,
		Title:       r.Title,
		Image:       r.Image,
		Link:        r.Link,
		UserID:      fmt.Sprint(r.UserID),
		CreatedAt:   r.CreatedAt,
	}
}

func newSavedBookRecord(userID uint, b models.Book) *savedBookRecord {
	return &savedBookRecord{
		UserID:      userID,
		BookID:      b.BookID,
		Authors:     encodeAuthors(b.Authors),
		Description: b.Description,
		Title:       b.Title,
		Image:       b.Image,
		Link:        b.Link,
	}
}
