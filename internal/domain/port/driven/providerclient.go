// Package driven defines the outbound port interfaces of the domain.
package driven

import (
	"context"

	"github.com/polyask/polyask/internal/domain/model"
)

// ProviderClient is the uniform contract every provider adapter implements:
// issue one single-turn question to the provider's API and return the
// answer text. Failures are *model.ProviderError values carrying a
// display-ready message.
//
// An empty apiKey means "no credential configured". Live adapters must fail
// with ErrorKindMissingCredential rather than send the request; offline
// adapters are free to answer anyway.
type ProviderClient interface {
	// ID returns the stable provider identifier ("openai", "claude", ...).
	ID() string

	// DisplayName returns the user-facing provider name.
	DisplayName() string

	// Search sends the query as a single-turn question and returns the
	// model's textual answer.
	Search(ctx context.Context, query, apiKey string) (string, error)
}

// Summarizer is the optional capability of condensing several providers'
// answers into one synthesized answer. Callers check for it with a type
// assertion on a ProviderClient; adapters that cannot summarize simply do
// not implement it.
type Summarizer interface {
	// Summarize asks the provider to produce a single consolidated answer
	// highlighting agreement and divergence across the supplied answers,
	// in the language of the original question.
	Summarize(ctx context.Context, answers []model.SourcedAnswer, apiKey string) (string, error)
}
