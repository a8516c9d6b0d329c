package model

import "time"

// HistoryLimit is the maximum number of search records kept in history.
// Appending beyond the limit evicts the oldest record first.
const HistoryLimit = 50

// SearchRecord is one completed search batch: the query, every provider's
// answer (including failures), and the cross-provider summary. Records are
// serialized as a single JSON blob in the local store, most recent first.
type SearchRecord struct {
	ID        string         `json:"id"`
	Query     string         `json:"query"`
	Answers   []AnswerRecord `json:"answers"`
	Summary   string         `json:"summary"`
	CreatedAt time.Time      `json:"created_at"`
}
