package cli

import (
	"bytes"
	"testing"

	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE", "memory")
	t.Setenv("DB_DSN", "")
	t.Setenv("ENV", "test")
	t.Setenv("JWT_SECRET", "secret")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
		{"user", "create"},
		{"token", "issue"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestMigrateNeedsPostgres(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE=postgres")
}

func TestUserCreateNeedsPostgres(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "user", "create", "--username", "ada")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE=postgres")
}

func TestTokenIssueValidation(t *testing.T) {
	memoryEnv(t)

	_, err := execute(t, "token", "issue", "not-a-uuid")
	assert.True(t, service.IsValidation(err), "got %v", err)

	_, err = execute(t, "token", "issue", uuid.NewString(), "--ttl", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--ttl")

	// A fresh in-memory store knows nobody
	_, err = execute(t, "token", "issue", uuid.NewString())
	assert.True(t, service.IsNotFound(err), "got %v", err)

	t.Setenv("JWT_SECRET", "")
	_, err = execute(t, "token", "issue", uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestInvalidConfigStopsEveryCommand(t *testing.T) {
	memoryEnv(t)
	t.Setenv("STORAGE", "redis")

	_, err := execute(t, "migrate", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
