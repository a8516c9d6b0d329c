package model

import "time"

// Credential holds the plaintext API key for one provider. It exists only in
// memory at the domain boundary; the sqlite adapter stores the encrypted
// form. An empty Key means no credential is configured for the provider.
type Credential struct {
	ProviderID string
	Key        string
	UpdatedAt  time.Time
}

// Usable reports whether the credential carries a real key that may be sent
// to a live provider endpoint.
func (c Credential) Usable() bool {
	return c.Key != ""
}
