package application

import (
	"context"
	"log/slog"

	"github.com/polyask/polyask/internal/domain/model"
	"github.com/polyask/polyask/internal/domain/port/driven"
)

// DefaultSummaryOrder is the fixed summarizer candidate priority. It is a
// deliberate quality/availability ranking, independent of which providers
// the user selected for the batch.
var DefaultSummaryOrder = []string{"openai", "claude", "gemini"}

// NoSummaryPlaceholder is surfaced when every summarizer candidate was
// skipped or failed. An explanatory message beats silence.
const NoSummaryPlaceholder = "No summary could be generated. " +
	"Add an API key for ChatGPT, Claude, or Gemini in Settings to enable cross-provider summaries."

// summarize runs the summarization policy: try each candidate in the fixed
// priority order, skipping those that are unregistered, unavailable, not
// summarizer-capable, or without a usable credential. The first success
// wins; a candidate's failure is logged and never fatal. With no non-error
// answers at all there is nothing to summarize and no attempt is made.
func (s *SearchService) summarize(ctx context.Context, answers []model.SourcedAnswer) string {
	if len(answers) == 0 {
		return ""
	}

	for _, id := range s.summaryOrder {
		client, ok := s.providers.Lookup(id)
		if !ok || !s.providers.Available(id) {
			continue
		}
		summarizer, ok := client.(driven.Summarizer)
		if !ok {
			continue
		}

		key, err := s.creds.GetKey(ctx, id)
		if err != nil {
			slog.Warn("credential lookup failed for summarizer candidate", "provider", id, "error", err)
			continue
		}
		if key == "" {
			continue
		}

		text, err := summarizer.Summarize(ctx, answers, key)
		if err != nil {
			slog.Warn("summarization failed, trying next candidate", "provider", id, "error", err)
			continue
		}
		return text
	}

	return NoSummaryPlaceholder
}
