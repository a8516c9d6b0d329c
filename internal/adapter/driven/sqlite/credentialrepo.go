package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/polyask/polyask/internal/domain/model"
	"github.com/polyask/polyask/internal/domain/port/driven"
	"github.com/polyask/polyask/internal/vault"
)

// apiKeyPrefix namespaces credential blobs inside the local store. The full
// key is apiKey_<providerId>.
const apiKeyPrefix = "apiKey_"

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the CredentialStore implementation: plaintext API keys
// go through the vault before touching the local store, one ciphertext blob
// per provider. A blob that fails to decrypt (changed vault password,
// corrupted row) is logged and reported as absent, never as an error.
type CredentialRepo struct {
	kv       driven.KVStore
	password string
}

// NewCredentialRepo creates a CredentialRepo encrypting with the given vault
// password.
func NewCredentialRepo(kv driven.KVStore, password string) *CredentialRepo {
	return &CredentialRepo{kv: kv, password: password}
}

// SetKey encrypts plaintext and stores it under apiKey_<providerID>.
func (r *CredentialRepo) SetKey(ctx context.Context, providerID, plaintext string) error {
	blob, err := vault.Encrypt(plaintext, r.password)
	if err != nil {
		return fmt.Errorf("encrypt key for %q: %w", providerID, err)
	}
	if err := r.kv.Set(ctx, apiKeyPrefix+providerID, blob); err != nil {
		return fmt.Errorf("store key for %q: %w", providerID, err)
	}
	return nil
}

// GetKey returns the decrypted API key for providerID, or ("", nil) when no
// key is stored or the blob is unreadable.
func (r *CredentialRepo) GetKey(ctx context.Context, providerID string) (string, error) {
	blob, err := r.kv.Get(ctx, apiKeyPrefix+providerID)
	if err != nil {
		return "", fmt.Errorf("load key for %q: %w", providerID, err)
	}
	if blob == "" {
		return "", nil
	}

	plaintext, err := vault.Decrypt(blob, r.password)
	if err != nil {
		slog.Warn("stored api key is unreadable, treating as absent", "provider", providerID, "error", err)
		return "", nil
	}
	return plaintext, nil
}

// List returns a credential for every provider with a stored, decryptable
// key. Unreadable blobs are skipped.
func (r *CredentialRepo) List(ctx context.Context) ([]model.Credential, error) {
	keys, err := r.kv.Keys(ctx, apiKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list credential keys: %w", err)
	}

	creds := make([]model.Credential, 0, len(keys))
	for _, k := range keys {
		providerID := strings.TrimPrefix(k, apiKeyPrefix)
		plaintext, err := r.GetKey(ctx, providerID)
		if err != nil {
			return nil, err
		}
		if plaintext == "" {
			continue
		}
		creds = append(creds, model.Credential{ProviderID: providerID, Key: plaintext})
	}
	return creds, nil
}

// DeleteKey removes the stored API key for providerID.
func (r *CredentialRepo) DeleteKey(ctx context.Context, providerID string) error {
	if err := r.kv.Remove(ctx, apiKeyPrefix+providerID); err != nil {
		return fmt.Errorf("delete key for %q: %w", providerID, err)
	}
	return nil
}
