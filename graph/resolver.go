package graph

import (
	"github.com/VitaminP8/bookshelf/internal/library"
)

//go:generate go tool gqlgen generate

// Resolver служит корневой точкой для всех резолверов.
// Зависимости (хранилища и выпуск токенов) внедряются через library.Service.
type Resolver struct {
	Library *library.Service
}
