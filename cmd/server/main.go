package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/VitaminP8/bookshelf/graph"
	"github.com/VitaminP8/bookshelf/internal/auth"
	"github.com/VitaminP8/bookshelf/internal/book"
	"github.com/VitaminP8/bookshelf/internal/config"
	"github.com/VitaminP8/bookshelf/internal/library"
	"github.com/VitaminP8/bookshelf/internal/storage/memory"
	"github.com/VitaminP8/bookshelf/internal/storage/mongodb"
	"github.com/VitaminP8/bookshelf/internal/storage/postgres"
	"github.com/VitaminP8/bookshelf/internal/user"
)

func main() {
	// загружаем .env из нашего config.go
	config.LoadEnv()
	cfg := config.Load()

	storageType := flag.String("storage", cfg.Storage, "Тип хранилища: memory, postgres или mongo")
	flag.Parse()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	var userStore user.UserStorage
	var bookStore book.BookStorage
	var closeStore func()

	switch *storageType {
	case "postgres":
		db, err := postgres.Open(cfg.Postgres)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}

		log.Println("Используется PostgreSQL хранилище")
		userStore = postgres.NewUserPostgresStorage(db)
		bookStore = postgres.NewBookPostgresStorage(db)
		closeStore = func() {
			if err := postgres.Close(db); err != nil {
				log.Println(err)
			}
		}

	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		cancel()
		if err != nil {
			log.Fatalf("mongodb: %v", err)
		}

		log.Println("Используется MongoDB хранилище")
		userStore = mongodb.NewUserMongoStorage(db)
		bookStore = mongodb.NewBookMongoStorage(db)
		closeStore = func() {
			if err := db.Disconnect(context.Background()); err != nil {
				log.Println("mongodb disconnect:", err)
			}
		}

	case "memory":
		log.Println("Используется in-memory хранилище")
		books := memory.NewBookMemoryStorage()
		userStore = memory.NewUserMemoryStorage(books)
		bookStore = books
		closeStore = func() {}

	default:
		log.Fatalf("неизвестный тип хранилища: %s", *storageType)
	}

	// Инициализация резолвера
	resolver := &graph.Resolver{
		Library: library.New(userStore, bookStore, tokens),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	// Страница с тестовым интерфейсом Playground
	r.Handle("/", graph.NewPlaygroundHandler("/graphql"))
	// auth.Middleware проверяет JWT из заголовка и кладет identity в context
	r.With(auth.Middleware(tokens)).Handle("/graphql", graph.NewHandler(resolver))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// запуск HTTP сервер
	go func() {
		log.Printf("Сервер запущен на http://localhost:%s/", cfg.Port)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // ждет сигнал

	log.Println("Завершение...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Ошибка при завершении сервера: %v", err)
	}

	closeStore()

	log.Println("Сервер остановлен корректно")
}
