package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Storage     string
	JWTSecret   string
	TokenTTL    time.Duration
	Postgres    PostgresConfig
	MongoURI    string
	MongoDB     string
	CORSOrigins []string
}

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found")
	}
}

func GetEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("environment variable %s is not set", key)
	}
	return value
}

func GetEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Load reads the service configuration from the environment.
// JWT_SECRET is required; everything else has a default.
func Load() *Config {
	ttl, err := time.ParseDuration(GetEnvDefault("TOKEN_TTL", "2h"))
	if err != nil || ttl <= 0 {
		log.Printf("invalid TOKEN_TTL, using 2h")
		ttl = 2 * time.Hour
	}

	return &Config{
		Port:      GetEnvDefault("PORT", "8080"),
		Storage:   GetEnvDefault("STORAGE", "memory"),
		JWTSecret: GetEnv("JWT_SECRET"),
		TokenTTL:  ttl,
		Postgres: PostgresConfig{
			Host:     GetEnvDefault("DB_HOST", "localhost"),
			User:     GetEnvDefault("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     GetEnvDefault("DB_NAME", "bookshelf"),
			Port:     GetEnvDefault("DB_PORT", "5432"),
			SSLMode:  GetEnvDefault("DB_SSLMODE", "disable"),
		},
		MongoURI:    GetEnvDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:     GetEnvDefault("MONGODB_DB", "bookshelf"),
		CORSOrigins: splitList(GetEnvDefault("CORS_ORIGINS", "*")),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
