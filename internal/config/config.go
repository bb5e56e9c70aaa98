package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lumina-app/lumina-import-go/pkg/errors"
)

type Config struct {
	Wiki     WikiConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Import   ImportConfig
	API      APIConfig
	Logging  LoggingConfig
}

type WikiConfig struct {
	APIBaseURL     string
	WikidataAPIURL string
	PageBaseURL    string
	UserAgent      string
	ThumbSize      int
	CategoryLimit  int
}

type StorageConfig struct {
	Endpoint string
	Bucket   string
	APIKey   string
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type ImportConfig struct {
	CreatedBy    string
	Delay        time.Duration
	ImageMaxDim  int
	SquareAvatar bool
	AvatarSize   int
	CacheTTL     time.Duration
	CacheEnabled bool
}

type APIConfig struct {
	BindAddr string
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Wiki: WikiConfig{
			APIBaseURL:     getEnv("WIKI_API_BASE_URL", "https://en.wikipedia.org/w/api.php"),
			WikidataAPIURL: getEnv("WIKIDATA_API_BASE_URL", "https://www.wikidata.org/w/api.php"),
			PageBaseURL:    getEnv("WIKI_PAGE_BASE_URL", "https://en.wikipedia.org/wiki"),
			UserAgent:      getEnv("WIKI_USER_AGENT", "LuminaImporter/1.0 (profile import pipeline)"),
			ThumbSize:      getEnvInt("WIKI_THUMB_SIZE", 600),
			CategoryLimit:  getEnvInt("WIKI_CATEGORY_LIMIT", 20),
		},
		Storage: StorageConfig{
			Endpoint: getEnv("STORAGE_ENDPOINT", ""),
			Bucket:   getEnv("STORAGE_BUCKET", "profile-images"),
			APIKey:   getEnv("STORAGE_API_KEY", ""),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "lumina"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "lumina"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Import: ImportConfig{
			CreatedBy:    getEnv("IMPORT_CREATED_BY", "wikipedia-importer"),
			Delay:        time.Duration(getEnvInt("IMPORT_DELAY_MS", 1000)) * time.Millisecond,
			ImageMaxDim:  getEnvInt("IMPORT_IMAGE_MAX_DIM", 800),
			SquareAvatar: getEnvBool("IMPORT_SQUARE_AVATAR", false),
			AvatarSize:   getEnvInt("IMPORT_AVATAR_SIZE", 500),
			CacheTTL:     time.Duration(getEnvInt("IMPORT_CACHE_TTL_MINUTES", 360)) * time.Minute,
			CacheEnabled: getEnvBool("IMPORT_CACHE_ENABLED", true),
		},
		API: APIConfig{
			BindAddr: getEnv("API_BIND_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage.Endpoint == "" {
		return errors.NewConfigError("STORAGE_ENDPOINT is required")
	}
	if c.Storage.APIKey == "" {
		return errors.NewConfigError("STORAGE_API_KEY is required")
	}
	if c.Postgres.Password == "" {
		return errors.NewConfigError("POSTGRES_PASSWORD is required")
	}
	if c.Import.Delay < 0 {
		return errors.NewConfigError("IMPORT_DELAY_MS must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
