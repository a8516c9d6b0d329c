package driven

import "context"

// KVStore is the local persistence collaborator: a flat string key-value
// store scoped to this installation. Both the encrypted credential blobs
// and the serialized search history live behind this interface.
type KVStore interface {
	// Get returns the value stored under key. Returns ("", nil) when the
	// key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores or replaces the value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the value under key. Removing an absent key is not
	// an error.
	Remove(ctx context.Context, key string) error

	// Keys returns all stored keys that start with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
