package model

// ProviderDescriptor describes one LLM provider known to the application.
// Descriptors are defined once at startup and never change afterwards;
// ID values are unique across the process lifetime.
type ProviderDescriptor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Available   bool   `json:"available"`
}
