package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/polyask/polyask/internal/application"
	"github.com/polyask/polyask/internal/domain/model"
)

// errorResponse is the JSON body for all error responses.
type errorResponse struct {
	Error string `json:"error"`
}

// searchAccepted is the JSON body returned when a search batch is started.
type searchAccepted struct {
	State application.SearchState `json:"state"`
}

// snapshotResponse is the JSON shape of a search batch snapshot. Answers is
// keyed by provider ID and grows while the batch is running.
type snapshotResponse struct {
	State    application.SearchState      `json:"state"`
	Query    string                       `json:"query"`
	Selected []string                     `json:"selected"`
	Answers  map[string]model.AnswerRecord `json:"answers"`
	Summary  string                       `json:"summary"`
}

// keyStatus reports whether a provider has a stored API key. The key itself
// never leaves the server.
type keyStatus struct {
	ProviderID string    `json:"provider_id"`
	Configured bool      `json:"configured"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
