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
	_ driven.ProviderClient = (*Gemini)(nil)
	_ driven.Summarizer     = (*Gemini)(nil)
)

// Gemini talks to the Google Generative Language generateContent endpoint.
type Gemini struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewGemini creates the production Gemini adapter.
func NewGemini() *Gemini {
	return &Gemini{
		httpClient: defaultHTTPClient,
		baseURL:    "https://generativelanguage.googleapis.com",
		model:      "gemini-1.5-flash",
	}
}

// NewGeminiWithHTTPClient creates a Gemini adapter with a custom client and
// base URL. Intended for tests against an httptest server.
func NewGeminiWithHTTPClient(httpClient *http.Client, baseURL string) *Gemini {
	a := NewGemini()
	a.httpClient = httpClient
	a.baseURL = baseURL
	return a
}

// ID implements driven.ProviderClient.
func (a *Gemini) ID() string { return "gemini" }

// DisplayName implements driven.ProviderClient.
func (a *Gemini) DisplayName() string { return "Gemini" }

// Search implements driven.ProviderClient.
func (a *Gemini) Search(ctx context.Context, query, apiKey string) (string, error) {
	if apiKey == "" {
		return "", missingKeyError(a.ID(), a.DisplayName())
	}
	// Gemini has no separate system slot on this endpoint; fold the framing
	// into the prompt.
	prompt := searchSystemPrompt + "\n\nQuestion: " + query
	return a.generate(ctx, apiKey, prompt)
}

// Summarize implements driven.Summarizer.
func (a *Gemini) Summarize(ctx context.Context, answers []model.SourcedAnswer, apiKey string) (string, error) {
	if apiKey == "" {
		return "", missingKeyError(a.ID(), a.DisplayName())
	}
	prompt := summarySystemPrompt + "\n\n" + summaryUserPrompt(answers)
	return a.generate(ctx, apiKey, prompt)
}

// generate performs one generateContent request and concatenates the text
// parts of the first candidate.
func (a *Gemini) generate(ctx context.Context, apiKey, prompt string) (string, error) {
	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", a.baseURL, a.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	// Key goes in a header, not the query string, so it cannot leak into
	// access logs.
	req.Header.Set("x-goog-api-key", apiKey)
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
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil || len(apiResp.Candidates) == 0 {
		return "", model.NewProviderError(a.ID(), model.ErrorKindUnknown,
			a.DisplayName()+" returned a response that could not be decoded.")
	}

	var parts []string
	for _, p := range apiResp.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	if len(parts) == 0 {
		return "", model.NewProviderError(a.ID(), model.ErrorKindUnknown,
			a.DisplayName()+" returned no text content.")
	}

	return strings.Join(parts, ""), nil
}
