package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment        string
	Storage            string
	DBDSN              string
	AutoMigrate        bool
	HTTPAddr           string
	JWTSecret          string
	TelegramToken      string
	TxMaxRetries       int
	CORSAllowedOrigins []string
	APIWriteRPS        float64
	APIWriteBurst      int
	BotTimezone        string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env: %v", err)
	}

	cfg := &Config{
		Environment:        getEnv("ENV", "development"),
		Storage:            strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DBDSN:              os.Getenv("DB_DSN"),
		AutoMigrate:        getEnvBool("AUTO_MIGRATE", false),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		TelegramToken:      os.Getenv("TELEGRAM_TOKEN"),
		TxMaxRetries:       getEnvInt("TX_MAX_RETRIES", 3),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		APIWriteRPS:        getEnvFloat("API_WRITE_RPS", 5),
		APIWriteBurst:      getEnvInt("API_WRITE_BURST", 10),
		BotTimezone:        getEnv("BOT_TIMEZONE", "UTC"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that do not depend on which surfaces get started.
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required when STORAGE=%s", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q, expected %s or %s", c.Storage, StoragePostgres, StorageMemory)
	}

	if c.TxMaxRetries < 0 {
		return fmt.Errorf("TX_MAX_RETRIES must not be negative")
	}

	if _, err := time.LoadLocation(c.BotTimezone); err != nil {
		return fmt.Errorf("invalid BOT_TIMEZONE %q: %w", c.BotTimezone, err)
	}
	return nil
}

// BotLocation is the zone the bot reads and prints times in.
func (c *Config) BotLocation() *time.Location {
	loc, err := time.LoadLocation(c.BotTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HTTPEnabled reports whether the HTTP API should be served.
func (c *Config) HTTPEnabled() bool {
	return c.HTTPAddr != "" && c.HTTPAddr != "off"
}

// BotEnabled reports whether the Telegram bot should be started.
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
		log.Printf("invalid integer in %s=%q, using %d", key, value, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
		log.Printf("invalid number in %s=%q, using %g", key, value, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
		log.Printf("invalid boolean in %s=%q, using %t", key, value, fallback)
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
