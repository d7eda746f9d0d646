package postgres

import (
	"context"
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite" // Импортируем драйвер SQLite
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/VitaminP8/bookshelf/internal/config"
	"github.com/VitaminP8/bookshelf/internal/user"
	"github.com/VitaminP8/bookshelf/models"
)

func init() {
	user.PasswordCost = bcrypt.MinCost
}

// setupTestDB создает тестовую БД в памяти и выполняет миграции
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err, "Failed to connect to in-memory SQLite")

	// одно соединение, иначе у каждого своя :memory: база
	db.DB().SetMaxOpenConns(1)
	// Отключаем логирование запросов для тестов
	db.LogMode(false)

	require.NoError(t, Migrate(db), "Failed to migrate database schema")

	t.Cleanup(func() { db.Close() })
	return db
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.PostgresConfig{
		Host:     "db",
		User:     "books",
		Password: "secret",
		Name:     "bookshelf",
		Port:     "5432",
		SSLMode:  "disable",
	})
	assert.Equal(t, "host=db user=books password=secret dbname=bookshelf port=5432 sslmode=disable", dsn)
}

func TestMigrate(t *testing.T) {
	db := setupTestDB(t)

	assert.True(t, db.HasTable("users"))
	assert.True(t, db.HasTable("saved_books"))
}

// Тест для проверки поведения Close с nil-базой данных
func TestCloseWithNilDB(t *testing.T) {
	assert.NoError(t, Close(nil))
}

func TestAuthorsRoundTrip(t *testing.T) {
	t.Run("Several authors", func(t *testing.T) {
		authors := []string{"Jane Doe", "John Roe"}
		assert.Equal(t, authors, decodeAuthors(encodeAuthors(authors)))
	})

	t.Run("No authors", func(t *testing.T) {
		assert.Equal(t, []string{}, decodeAuthors(encodeAuthors(nil)))
		assert.Equal(t, encodeAuthors(nil), encodeAuthors([]string{}))
	})

	t.Run("Single empty author is not the empty list", func(t *testing.T) {
		assert.Equal(t, []string{""}, decodeAuthors(encodeAuthors([]string{""})))
		assert.NotEqual(t, encodeAuthors([]string{}), encodeAuthors([]string{""}))
	})

	t.Run("Separator characters stay inside a name", func(t *testing.T) {
		authors := []string{"Jane\x1fDoe", "John, Roe"}
		assert.Equal(t, authors, decodeAuthors(encodeAuthors(authors)))
	})

	t.Run("Stored in the database", func(t *testing.T) {
		ctx := context.Background()
		db := setupTestDB(t)
		storage := NewUserPostgresStorage(db)
		books := NewBookPostgresStorage(db)

		u, err := storage.CreateUser(ctx, "reader", "reader@example.com", "password123")
		require.NoError(t, err)

		blank := models.Book{BookID: "x", Title: "Anonymous", Authors: []string{""}}
		updated, err := storage.AddSavedBook(ctx, u.ID, blank)
		require.NoError(t, err)
		require.Equal(t, 1, updated.BookCount())
		assert.Equal(t, []string{""}, updated.SavedBooks[0].Authors)

		// пустой список авторов это другой payload
		none := blank
		none.Authors = []string{}
		updated, err = storage.AddSavedBook(ctx, u.ID, none)
		require.NoError(t, err)
		assert.Equal(t, 2, updated.BookCount())

		found, err := books.FindBooks(ctx, models.BookFilter{Authors: []string{}})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, []string{}, found[0].Authors)
	})
}

func TestParseID(t *testing.T) {
	id, ok := parseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = parseID("abc")
	assert.False(t, ok)

	_, ok = parseID("0")
	assert.False(t, ok)
}
