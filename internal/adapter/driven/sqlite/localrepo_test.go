package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRepo_SetAndGet(t *testing.T) {
	repo := NewLocalRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "greeting", "hello"))

	val, err := repo.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", val)
}

func TestLocalRepo_GetMissing(t *testing.T) {
	repo := NewLocalRepo(setupTestDB(t))

	val, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestLocalRepo_SetOverwrites(t *testing.T) {
	repo := NewLocalRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", "old"))
	require.NoError(t, repo.Set(ctx, "k", "new"))

	val, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", val)
}

func TestLocalRepo_Remove(t *testing.T) {
	repo := NewLocalRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", "v"))
	require.NoError(t, repo.Remove(ctx, "k"))

	val, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "", val)

	// Removing an absent key is not an error.
	require.NoError(t, repo.Remove(ctx, "k"))
}

func TestLocalRepo_KeysByPrefix(t *testing.T) {
	repo := NewLocalRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "apiKey_claude", "a"))
	require.NoError(t, repo.Set(ctx, "apiKey_openai", "b"))
	require.NoError(t, repo.Set(ctx, "searchHistory", "c"))

	keys, err := repo.Keys(ctx, "apiKey_")
	require.NoError(t, err)
	assert.Equal(t, []string{"apiKey_claude", "apiKey_openai"}, keys)
}
