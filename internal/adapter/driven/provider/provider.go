// Package provider implements the ProviderClient port for each supported
// LLM vendor, plus an offline mock variant and the registry that maps
// provider IDs to descriptors and clients.
//
// Live adapters issue exactly one HTTPS request per Search or Summarize
// call, authenticated with the API key supplied by the caller. An empty key
// fails fast with ErrorKindMissingCredential; no placeholder value ever
// reaches a vendor endpoint.
package provider

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/polyask/polyask/internal/domain/model"
)

// defaultHTTPClient is shared by all live adapters. The aggregation layer
// deliberately carries no timeout, so the transport enforces one here to
// keep a dead vendor from wedging a batch forever.
var defaultHTTPClient = &http.Client{Timeout: 60 * time.Second}

// searchSystemPrompt frames every single-turn question the same way across
// vendors.
const searchSystemPrompt = "You are a helpful, knowledgeable assistant. " +
	"Provide accurate and useful information, answering in the language of the question."

// summarySystemPrompt frames the cross-provider summarization request.
const summarySystemPrompt = "You are an expert at synthesizing answers from multiple AI assistants. " +
	"Highlight where the answers agree and where they diverge, call out any contradictions, " +
	"extract the most useful and accurate information, and keep the result concise. " +
	"Answer in the language of the original answers."

// missingKeyError builds the MissingCredential failure for a provider.
func missingKeyError(id, displayName string) *model.ProviderError {
	return model.NewProviderError(id, model.ErrorKindMissingCredential,
		fmt.Sprintf("No API key is configured for %s.", displayName))
}

// transportError builds the failure for a request that never produced an
// HTTP response.
func transportError(id, displayName string, err error) *model.ProviderError {
	return model.NewProviderError(id, model.ErrorKindProviderUnavailable,
		fmt.Sprintf("%s could not be reached: %v", displayName, err))
}

// classifyStatus maps a non-2xx vendor response to the error taxonomy.
func classifyStatus(id, displayName string, status int, body string) *model.ProviderError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return model.NewProviderError(id, model.ErrorKindAuthRejected,
			fmt.Sprintf("%s rejected the API key.", displayName))
	case status == http.StatusTooManyRequests:
		return model.NewProviderError(id, model.ErrorKindQuotaExceeded,
			fmt.Sprintf("%s quota or rate limit exceeded.", displayName))
	case status >= 500:
		return model.NewProviderError(id, model.ErrorKindProviderUnavailable,
			fmt.Sprintf("%s is currently unavailable (HTTP %d).", displayName, status))
	default:
		return model.NewProviderError(id, model.ErrorKindUnknown,
			fmt.Sprintf("%s returned an unexpected error (HTTP %d): %s", displayName, status, bodySnippet(body)))
	}
}

// bodySnippet trims a response body to a displayable length.
func bodySnippet(body string) string {
	const maxLen = 200
	body = strings.TrimSpace(body)
	if len(body) > maxLen {
		return body[:maxLen] + "..."
	}
	if body == "" {
		return "(empty body)"
	}
	return body
}

// summaryUserPrompt lays out every answer with its source for the
// summarizing model.
func summaryUserPrompt(answers []model.SourcedAnswer) string {
	var b strings.Builder
	b.WriteString("Summarize the following answers from multiple AI assistants to the same question:\n\n")
	for i, a := range answers {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "**Answer from %s:**\n%s\n", a.DisplayName, a.Content)
	}
	return b.String()
}
