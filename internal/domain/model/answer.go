package model

import "time"

// AnswerRecord is the outcome of one provider call within a search batch.
// Exactly one record exists per (batch, provider); records are immutable
// once created. ErrMessage is non-empty if and only if the call failed;
// Content still carries a best-effort display string in the failure case.
type AnswerRecord struct {
	ProviderID string    `json:"provider_id"`
	Content    string    `json:"content"`
	ProducedAt time.Time `json:"produced_at"`
	ErrMessage string    `json:"error,omitempty"`
}

// Failed reports whether the provider call behind this record failed.
func (a AnswerRecord) Failed() bool {
	return a.ErrMessage != ""
}

// SourcedAnswer pairs a provider's display name with its answer text.
// It is the input shape for cross-provider summarization.
type SourcedAnswer struct {
	DisplayName string
	Content     string
}
