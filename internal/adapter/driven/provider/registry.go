package provider

import (
	"time"

	"github.com/polyask/polyask/internal/domain/model"
	"github.com/polyask/polyask/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProviderRegistry = (*Registry)(nil)

// Registry holds the static provider set: one descriptor per provider,
// defined at process start and immutable afterwards, plus the client that
// serves it. Registration order is preserved for display.
type Registry struct {
	descriptors []model.ProviderDescriptor
	clients     map[string]driven.ProviderClient
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]driven.ProviderClient)}
}

// Register adds a provider. Registering an already-known ID replaces its
// client but keeps the original descriptor position.
func (r *Registry) Register(desc model.ProviderDescriptor, client driven.ProviderClient) {
	if _, known := r.clients[desc.ID]; !known {
		r.descriptors = append(r.descriptors, desc)
	}
	r.clients[desc.ID] = client
}

// Lookup returns the client registered for id.
func (r *Registry) Lookup(id string) (driven.ProviderClient, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Available reports whether id is registered and its descriptor marks it
// available for dispatch.
func (r *Registry) Available(id string) bool {
	for _, d := range r.descriptors {
		if d.ID == id {
			return d.Available
		}
	}
	return false
}

// DisplayName returns the display name for id, falling back to the id
// itself for unknown providers.
func (r *Registry) DisplayName(id string) string {
	if c, ok := r.clients[id]; ok {
		return c.DisplayName()
	}
	return id
}

// Descriptors returns all registered descriptors in registration order.
func (r *Registry) Descriptors() []model.ProviderDescriptor {
	out := make([]model.ProviderDescriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// NewDefaultRegistry builds the production provider set. With useMocks set,
// every provider is served by the offline adapter with the given delay;
// otherwise openai, claude, and gemini get live adapters. perplexity and
// copilot exist as descriptors only (never dispatched while unavailable),
// served by stubs so they still resolve by ID.
func NewDefaultRegistry(useMocks bool, mockDelay time.Duration) *Registry {
	r := NewRegistry()

	if useMocks {
		r.Register(model.ProviderDescriptor{ID: "openai", DisplayName: "ChatGPT", Available: true},
			NewMock("openai", "ChatGPT", mockDelay))
		r.Register(model.ProviderDescriptor{ID: "gemini", DisplayName: "Gemini", Available: true},
			NewMock("gemini", "Gemini", mockDelay))
		r.Register(model.ProviderDescriptor{ID: "claude", DisplayName: "Claude", Available: true},
			NewMock("claude", "Claude", mockDelay))
	} else {
		r.Register(model.ProviderDescriptor{ID: "openai", DisplayName: "ChatGPT", Available: true}, NewOpenAI())
		r.Register(model.ProviderDescriptor{ID: "gemini", DisplayName: "Gemini", Available: true}, NewGemini())
		r.Register(model.ProviderDescriptor{ID: "claude", DisplayName: "Claude", Available: true}, NewAnthropic())
	}

	r.Register(model.ProviderDescriptor{ID: "perplexity", DisplayName: "Perplexity", Available: false},
		NewMock("perplexity", "Perplexity", mockDelay))
	r.Register(model.ProviderDescriptor{ID: "copilot", DisplayName: "Copilot", Available: false},
		NewMock("copilot", "Copilot", mockDelay))

	return r
}
