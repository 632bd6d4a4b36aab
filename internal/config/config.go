package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv     string
	ServerPort int
	LogLevel   string

	// StorageDriver selects the repository backend: file, sqlite or
	// mongo.
	StorageDriver string
	DataDir       string // file backend
	DatabasePath  string // sqlite backend
	MongoURI      string
	MongoDatabase string

	JWTSecret   string
	TokenExpiry time.Duration

	// PasswordScheme selects the credential hasher: hmac or scrypt.
	PasswordScheme string
}

// Load loads configuration from a .env file (if present) and the
// environment, falling back to defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	expiry, err := time.ParseDuration(getEnv("TOKEN_EXPIRY", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_EXPIRY: %w", err)
	}

	driver := getEnv("STORAGE_DRIVER", "file")
	switch driver {
	case "file", "sqlite", "mongo":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		ServerPort:     port,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StorageDriver:  driver,
		DataDir:        getEnv("DATA_DIR", "./data"),
		DatabasePath:   getEnv("DATABASE_PATH", "./weekly-goals.db"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "weekly_goals"),
		JWTSecret:      secret,
		TokenExpiry:    expiry,
		PasswordScheme: getEnv("PASSWORD_SCHEME", "hmac"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
