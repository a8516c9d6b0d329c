package driven

import (
	"context"

	"github.com/polyask/polyask/internal/domain/model"
)

// CredentialStore defines the driven port for encrypted API key persistence.
// The adapter layer owns encryption/decryption; this interface operates on
// plaintext keys at the domain boundary.
type CredentialStore interface {
	// SetKey stores or replaces the API key for the given provider.
	SetKey(ctx context.Context, providerID, plaintext string) error

	// GetKey retrieves the plaintext API key for the given provider.
	// Returns ("", nil) when no key exists or the stored blob cannot be
	// decrypted; an unreadable key is indistinguishable from an absent one.
	GetKey(ctx context.Context, providerID string) (string, error)

	// List returns the credentials of every provider that has a stored,
	// decryptable key.
	List(ctx context.Context) ([]model.Credential, error)

	// DeleteKey removes the API key for the given provider.
	DeleteKey(ctx context.Context, providerID string) error
}
