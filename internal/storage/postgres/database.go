package postgres

import (
	"fmt"
	"log"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"

	"github.com/VitaminP8/bookshelf/internal/config"
)

// DSN строит строку подключения из конфигурации
func DSN(cfg config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.Port,
		cfg.SSLMode,
	)
}

// Open подключается к PostgreSQL и выполняет миграции
func Open(cfg config.PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("Successfully connected to the database.")
	return db, nil
}

// Migrate создает таблицы users и saved_books
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(&userRecord{}, &savedBookRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой данных
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	err := db.Close()
	if err != nil {
		return fmt.Errorf("failed to close the database connection: %w", err)
	}

	log.Println("Database connection closed.")
	return nil
}
