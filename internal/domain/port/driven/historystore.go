package driven

import (
	"context"

	"github.com/polyask/polyask/internal/domain/model"
)

// HistoryStore defines the driven port for the capped search history.
// Entries are ordered most recent first; the store keeps at most
// model.HistoryLimit entries, evicting the oldest on append.
type HistoryStore interface {
	// Append prepends a record, truncates to the limit, and persists the
	// resulting sequence, overwriting the previous one.
	Append(ctx context.Context, rec model.SearchRecord) error

	// Load returns all stored records, most recent first. An absent or
	// malformed history yields an empty slice, never an error the caller
	// must handle beyond logging.
	Load(ctx context.Context) ([]model.SearchRecord, error)
}
