package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/polyask/polyask/internal/domain/model"
	"github.com/polyask/polyask/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.ProviderClient = (*OpenAI)(nil)
	_ driven.Summarizer     = (*OpenAI)(nil)
)

// OpenAI talks to the OpenAI chat-completions endpoint.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewOpenAI creates the production OpenAI adapter.
func NewOpenAI() *OpenAI {
	return &OpenAI{
		httpClient: defaultHTTPClient,
		baseURL:    "https://api.openai.com",
		model:      "gpt-4o-mini",
	}
}

// NewOpenAIWithHTTPClient creates an OpenAI adapter with a custom client and
// base URL. Intended for tests against an httptest server.
func NewOpenAIWithHTTPClient(httpClient *http.Client, baseURL string) *OpenAI {
	a := NewOpenAI()
	a.httpClient = httpClient
	a.baseURL = baseURL
	return a
}

// ID implements driven.ProviderClient.
func (a *OpenAI) ID() string { return "openai" }

// DisplayName implements driven.ProviderClient.
func (a *OpenAI) DisplayName() string { return "ChatGPT" }

// Search implements driven.ProviderClient.
func (a *OpenAI) Search(ctx context.Context, query, apiKey string) (string, error) {
	if apiKey == "" {
		return "", missingKeyError(a.ID(), a.DisplayName())
	}
	return a.complete(ctx, apiKey, searchSystemPrompt, query, 0.7)
}

// Summarize implements driven.Summarizer.
func (a *OpenAI) Summarize(ctx context.Context, answers []model.SourcedAnswer, apiKey string) (string, error) {
	if apiKey == "" {
		return "", missingKeyError(a.ID(), a.DisplayName())
	}
	return a.complete(ctx, apiKey, summarySystemPrompt, summaryUserPrompt(answers), 0.3)
}

// complete performs one chat-completions request and extracts the first
// choice's text.
func (a *OpenAI) complete(ctx context.Context, apiKey, system, user string, temperature float64) (string, error) {
	reqBody := map[string]any{
		"model": a.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens":  1000,
		"temperature": temperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
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
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil || len(apiResp.Choices) == 0 {
		return "", model.NewProviderError(a.ID(), model.ErrorKindUnknown,
			a.DisplayName()+" returned a response that could not be decoded.")
	}

	return apiResp.Choices[0].Message.Content, nil
}
