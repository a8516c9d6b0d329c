package model

import "errors"

// ErrorKind classifies provider call failures.
type ErrorKind string

const (
	ErrorKindMissingCredential   ErrorKind = "missing_credential"
	ErrorKindAuthRejected        ErrorKind = "auth_rejected"
	ErrorKindQuotaExceeded       ErrorKind = "quota_exceeded"
	ErrorKindProviderUnavailable ErrorKind = "provider_unavailable"
	ErrorKindUnknown             ErrorKind = "unknown"
)

// ProviderError is a classified failure from a provider adapter. Message is
// human-readable and safe to surface directly to the end user.
type ProviderError struct {
	ProviderID string
	Kind       ErrorKind
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// NewProviderError creates a ProviderError for the given provider and kind.
func NewProviderError(providerID string, kind ErrorKind, message string) *ProviderError {
	return &ProviderError{ProviderID: providerID, Kind: kind, Message: message}
}

// KindOf returns the ErrorKind carried by err, or ErrorKindUnknown when err
// is not a ProviderError.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ErrorKindUnknown
}
