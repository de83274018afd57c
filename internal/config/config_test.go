package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ENV", "AUTO_MIGRATE", "HTTP_ADDR", "JWT_SECRET", "TELEGRAM_TOKEN", "TX_MAX_RETRIES", "CORS_ALLOWED_ORIGINS", "API_WRITE_RPS", "API_WRITE_BURST", "BOT_TIMEZONE"} {
		t.Setenv(key, "")
	}
	t.Setenv("STORAGE", "memory")
	t.Setenv("DB_DSN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.TxMaxRetries)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AutoMigrate)
	assert.InDelta(t, 5.0, cfg.APIWriteRPS, 0.0001)
	assert.Equal(t, 10, cfg.APIWriteBurst)
	assert.False(t, cfg.BotEnabled())
	assert.True(t, cfg.HTTPEnabled())
	assert.Equal(t, "UTC", cfg.BotTimezone)
	assert.Equal(t, time.UTC, cfg.BotLocation())
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "production")
	t.Setenv("STORAGE", "Postgres")
	t.Setenv("DB_DSN", "postgres://localhost/slots")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("TX_MAX_RETRIES", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 5, cfg.TxMaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.BotEnabled())
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{Storage: StoragePostgres}).Validate())
	assert.Error(t, (&Config{Storage: "redis"}).Validate())
	assert.Error(t, (&Config{Storage: StorageMemory, TxMaxRetries: -1}).Validate())
	assert.Error(t, (&Config{Storage: StorageMemory, BotTimezone: "Mars/Olympus_Mons"}).Validate())
	assert.NoError(t, (&Config{Storage: StorageMemory}).Validate())
}
