package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/polyask/polyask/internal/domain/model"
	"github.com/polyask/polyask/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.ProviderClient = (*Anthropic)(nil)
	_ driven.Summarizer     = (*Anthropic)(nil)
)

// Anthropic talks to the Anthropic messages endpoint.
type Anthropic struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewAnthropic creates the production Anthropic adapter.
func NewAnthropic() *Anthropic {
	return &Anthropic{
		httpClient: defaultHTTPClient,
		baseURL:    "https://api.anthropic.com",
		model:      "claude-3-haiku-20240307",
	}
}

// NewAnthropicWithHTTPClient creates an Anthropic adapter with a custom
// client and base URL. Intended for tests against an httptest server.
func NewAnthropicWithHTTPClient(httpClient *http.Client, baseURL string) *Anthropic {
	a := NewAnthropic()
	a.httpClient = httpClient
	a.baseURL = baseURL
	return a
}

// ID implements driven.ProviderClient.
func (a *Anthropic) ID() string { return "claude" }

// DisplayName implements driven.ProviderClient.
func (a *Anthropic) DisplayName() string { return "Claude" }

// Search implements driven.ProviderClient.
func (a *Anthropic) Search(ctx context.Context, query, apiKey string) (string, error) {
	if apiKey == "" {
		return "", missingKeyError(a.ID(), a.DisplayName())
	}
	return a.message(ctx, apiKey, searchSystemPrompt, query, 0.7)
}

// Summarize implements driven.Summarizer.
func (a *Anthropic) Summarize(ctx context.Context, answers []model.SourcedAnswer, apiKey string) (string, error) {
	if apiKey == "" {
		return "", missingKeyError(a.ID(), a.DisplayName())
	}
	return a.message(ctx, apiKey, summarySystemPrompt, summaryUserPrompt(answers), 0.3)
}

// message performs one messages-API request and concatenates the text
// content blocks of the reply.
func (a *Anthropic) message(ctx context.Context, apiKey, system, user string, temperature float64) (string, error) {
	reqBody := map[string]any{
		"model":       a.model,
		"max_tokens":  1000,
		"temperature": temperature,
		"system":      system,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", transportError(a.ID(), a.DisplayName(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(a.ID(), a.DisplayName(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(a.ID(), a.DisplayName(), resp.StatusCode, string(body))
	}

	var apiResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil || len(apiResp.Content) == 0 {
		return "", model.NewProviderError(a.ID(), model.ErrorKindUnknown,
			a.DisplayName()+" returned a response that could not be decoded.")
	}

	var parts []string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", model.NewProviderError(a.ID(), model.ErrorKindUnknown,
			a.DisplayName()+" returned no text content.")
	}

	return strings.Join(parts, "\n"), nil
}
