package app

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/Freeeeeet/slot_swapper/internal/config"
	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func memoryConfig(addr string) *config.Config {
	return &config.Config{
		Storage:       config.StorageMemory,
		HTTPAddr:      addr,
		JWTSecret:     "secret",
		TelegramToken: "123:abc",
		BotTimezone:   "UTC",
	}
}

func TestRunFailsBeforeServingWhenBotCannotStart(t *testing.T) {
	addr := freeAddr(t)
	a, err := New(context.Background(), memoryConfig(addr), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	boom := errors.New("telegram unreachable")
	a.newBot = func(string, ...bot.Option) (*bot.Bot, error) {
		return nil, boom
	}

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// Порт свободен: HTTP сервер не запускался
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}

func TestRunNeedsSomethingToServe(t *testing.T) {
	cfg := memoryConfig("off")
	cfg.TelegramToken = ""
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.EqualError(t, a.Run(context.Background()), "nothing to run: set HTTP_ADDR or TELEGRAM_TOKEN")
}

func TestRunRequiresJWTSecretForHTTP(t *testing.T) {
	cfg := memoryConfig(freeAddr(t))
	cfg.JWTSecret = ""
	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	called := false
	a.newBot = func(string, ...bot.Option) (*bot.Bot, error) {
		called = true
		return nil, errors.New("unused")
	}

	assert.ErrorContains(t, a.Run(context.Background()), "JWT_SECRET")
	assert.False(t, called)
}
