package driven

import "github.com/polyask/polyask/internal/domain/model"

// ProviderRegistry resolves provider IDs to descriptors and clients. The
// provider set is static: defined once at startup, immutable afterwards.
type ProviderRegistry interface {
	// Lookup returns the client registered for id.
	Lookup(id string) (ProviderClient, bool)

	// Available reports whether id is registered and marked available.
	// Unavailable providers must never be dispatched.
	Available(id string) bool

	// DisplayName returns the display name for id, falling back to the id
	// itself when unknown.
	DisplayName(id string) string

	// Descriptors returns all registered descriptors in registration order.
	Descriptors() []model.ProviderDescriptor
}
