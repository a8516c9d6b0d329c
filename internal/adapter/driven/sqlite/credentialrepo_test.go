package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVaultPassword = "test-vault-password"

func setupCredentialRepo(t *testing.T) (*CredentialRepo, *LocalRepo) {
	t.Helper()
	kv := NewLocalRepo(setupTestDB(t))
	return NewCredentialRepo(kv, testVaultPassword), kv
}

func TestCredentialRepo_SetAndGet(t *testing.T) {
	repo, _ := setupCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetKey(ctx, "openai", "sk-abc123"))

	key, err := repo.GetKey(ctx, "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-abc123", key)
}

func TestCredentialRepo_GetMissing(t *testing.T) {
	repo, _ := setupCredentialRepo(t)

	key, err := repo.GetKey(context.Background(), "gemini")
	require.NoError(t, err)
	assert.Equal(t, "", key)
}

func TestCredentialRepo_StoresCiphertextNotPlaintext(t *testing.T) {
	repo, kv := setupCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetKey(ctx, "openai", "sk-abc123"))

	raw, err := kv.Get(ctx, "apiKey_openai")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NotContains(t, raw, "sk-abc123")
}

func TestCredentialRepo_UnreadableBlobTreatedAsAbsent(t *testing.T) {
	repo, kv := setupCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "apiKey_claude", "not a real vault blob"))

	key, err := repo.GetKey(ctx, "claude")
	require.NoError(t, err)
	assert.Equal(t, "", key)
}

func TestCredentialRepo_WrongVaultPasswordTreatedAsAbsent(t *testing.T) {
	kv := NewLocalRepo(setupTestDB(t))
	ctx := context.Background()

	writer := NewCredentialRepo(kv, "password-one")
	require.NoError(t, writer.SetKey(ctx, "openai", "sk-abc123"))

	reader := NewCredentialRepo(kv, "password-two")
	key, err := reader.GetKey(ctx, "openai")
	require.NoError(t, err)
	assert.Equal(t, "", key)
}

func TestCredentialRepo_List(t *testing.T) {
	repo, kv := setupCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetKey(ctx, "openai", "sk-abc"))
	require.NoError(t, repo.SetKey(ctx, "gemini", "AIza-def"))
	// A corrupted blob must be skipped, not break the listing.
	require.NoError(t, kv.Set(ctx, "apiKey_claude", "garbage"))

	creds, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	assert.Equal(t, "gemini", creds[0].ProviderID)
	assert.Equal(t, "AIza-def", creds[0].Key)
	assert.Equal(t, "openai", creds[1].ProviderID)
	assert.Equal(t, "sk-abc", creds[1].Key)
}

func TestCredentialRepo_Delete(t *testing.T) {
	repo, _ := setupCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetKey(ctx, "openai", "sk-abc"))
	require.NoError(t, repo.DeleteKey(ctx, "openai"))

	key, err := repo.GetKey(ctx, "openai")
	require.NoError(t, err)
	assert.Equal(t, "", key)
}
