package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/polyask/polyask/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProviderClient = (*Mock)(nil)

// Mock is the offline adapter variant: it waits a fixed artificial delay
// and returns deterministic templated text containing the original query,
// without any network call. It answers regardless of the API key, which
// lets the aggregation flow be exercised without live credentials.
//
// Mock deliberately does not implement Summarizer, mirroring the fact that
// summarization always requires a real provider.
type Mock struct {
	id    string
	name  string
	delay time.Duration
}

// NewMock creates a mock adapter for the given identity.
func NewMock(id, displayName string, delay time.Duration) *Mock {
	return &Mock{id: id, name: displayName, delay: delay}
}

// ID implements driven.ProviderClient.
func (m *Mock) ID() string { return m.id }

// DisplayName implements driven.ProviderClient.
func (m *Mock) DisplayName() string { return m.name }

// Search implements driven.ProviderClient.
func (m *Mock) Search(ctx context.Context, query, _ string) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return fmt.Sprintf(
		"Answer from %s to %q:\n\nThis is placeholder text produced by the offline adapter. "+
			"With live credentials configured, the real %s API would be asked instead.",
		m.name, query, m.name,
	), nil
}
