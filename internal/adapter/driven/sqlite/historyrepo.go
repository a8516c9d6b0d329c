package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/polyask/polyask/internal/domain/model"
	"github.com/polyask/polyask/internal/domain/port/driven"
)

// historyKey is the local-store key holding the serialized search history.
const historyKey = "searchHistory"

// Compile-time interface satisfaction check.
var _ driven.HistoryStore = (*HistoryRepo)(nil)

// HistoryRepo persists the capped search history as one JSON blob in the
// local store, most recent record first. Each append rewrites the whole
// blob; this is not an incremental log.
type HistoryRepo struct {
	kv driven.KVStore
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(kv driven.KVStore) *HistoryRepo {
	return &HistoryRepo{kv: kv}
}

// Append prepends rec, truncates the sequence to model.HistoryLimit entries
// (oldest dropped first), and overwrites the stored blob.
func (r *HistoryRepo) Append(ctx context.Context, rec model.SearchRecord) error {
	records, err := r.Load(ctx)
	if err != nil {
		return err
	}

	records = append([]model.SearchRecord{rec}, records...)
	if len(records) > model.HistoryLimit {
		records = records[:model.HistoryLimit]
	}

	blob, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := r.kv.Set(ctx, historyKey, string(blob)); err != nil {
		return fmt.Errorf("store history: %w", err)
	}
	return nil
}

// Load returns the stored records, most recent first. An absent or
// malformed blob yields an empty slice; the parse fault is logged, never
// propagated.
func (r *HistoryRepo) Load(ctx context.Context) ([]model.SearchRecord, error) {
	blob, err := r.kv.Get(ctx, historyKey)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if blob == "" {
		return []model.SearchRecord{}, nil
	}

	var records []model.SearchRecord
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		slog.Warn("stored history is malformed, starting empty", "error", err)
		return []model.SearchRecord{}, nil
	}
	if records == nil {
		records = []model.SearchRecord{}
	}
	return records, nil
}
