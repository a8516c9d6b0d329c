// Package httphandler exposes the JSON API consumed by the browser panel's
// polling script. Every route under /api/v1 requires a valid session cookie.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/polyask/polyask/internal/application"
	"github.com/polyask/polyask/internal/domain/port/driven"
)

// SessionCookieName is the cookie carrying the signed session token. The
// web adapter sets it on login; this package only reads it.
const SessionCookieName = "polyask_session"

// Handler holds the dependencies for the JSON API endpoints.
type Handler struct {
	search    *application.SearchService
	creds     driven.CredentialStore
	history   driven.HistoryStore
	providers driven.ProviderRegistry
	logger    *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(
	search *application.SearchService,
	creds driven.CredentialStore,
	history driven.HistoryStore,
	providers driven.ProviderRegistry,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		search:    search,
		creds:     creds,
		history:   history,
		providers: providers,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers the JSON API routes on the provided mux.
// Every route is wrapped with session authentication.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler, sessions driven.Sessions) {
	authed := func(fn http.HandlerFunc) http.Handler {
		return sessionMiddleware(sessions, fn)
	}

	mux.Handle("POST /api/v1/search", authed(h.StartSearch))
	mux.Handle("GET /api/v1/search/results", authed(h.SearchResults))
	mux.Handle("GET /api/v1/providers", authed(h.ListProviders))
	mux.Handle("GET /api/v1/history", authed(h.ListHistory))
	mux.Handle("GET /api/v1/keys", authed(h.ListKeys))
	mux.Handle("PUT /api/v1/keys/{provider}", authed(h.PutKey))
	mux.Handle("DELETE /api/v1/keys/{provider}", authed(h.DeleteKey))
}

// ApplyMiddleware wraps the handler with panic recovery and request logging.
func ApplyMiddleware(handler http.Handler, logger *slog.Logger) http.Handler {
	return loggingMiddleware(logger, recoveryMiddleware(logger, handler))
}

// sessionMiddleware rejects requests without a valid session cookie.
func sessionMiddleware(sessions driven.Sessions, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if _, err := sessions.Verify(cookie.Value); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type startSearchRequest struct {
	Query     string   `json:"query"`
	Providers []string `json:"providers"`
}

// StartSearch handles POST /api/v1/search. It starts a batch and returns
// immediately; callers poll SearchResults for progress.
func (h *Handler) StartSearch(w http.ResponseWriter, r *http.Request) {
	var req startSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.search.Start(req.Query, req.Providers)
	switch {
	case errors.Is(err, application.ErrNothingToSearch):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, application.ErrSearchInFlight):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to start search", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start search")
		return
	}

	writeJSON(w, http.StatusAccepted, searchAccepted{State: application.StateRunning})
}

// SearchResults handles GET /api/v1/search/results. While a batch is
// running the answer map is partial; clients keep polling until the state
// is completed.
func (h *Handler) SearchResults(w http.ResponseWriter, r *http.Request) {
	snap := h.search.Snapshot()
	writeJSON(w, http.StatusOK, snapshotResponse{
		State:    snap.State,
		Query:    snap.Query,
		Selected: snap.Selected,
		Answers:  snap.Answers,
		Summary:  snap.Summary,
	})
}

// ListProviders handles GET /api/v1/providers.
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.providers.Descriptors())
}

// ListHistory handles GET /api/v1/history. Records come back most recent
// first, at most the store's cap.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// ListKeys handles GET /api/v1/keys. It reports which providers have a
// stored credential without ever returning the key material.
func (h *Handler) ListKeys(w http.ResponseWriter, r *http.Request) {
	creds, err := h.creds.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list credentials", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list keys")
		return
	}

	configured := make(map[string]keyStatus, len(creds))
	for _, c := range creds {
		configured[c.ProviderID] = keyStatus{
			ProviderID: c.ProviderID,
			Configured: c.Usable(),
			UpdatedAt:  c.UpdatedAt,
		}
	}

	statuses := make([]keyStatus, 0, len(h.providers.Descriptors()))
	for _, d := range h.providers.Descriptors() {
		if st, ok := configured[d.ID]; ok {
			statuses = append(statuses, st)
			continue
		}
		statuses = append(statuses, keyStatus{ProviderID: d.ID})
	}
	writeJSON(w, http.StatusOK, statuses)
}

type putKeyRequest struct {
	Key string `json:"key"`
}

// PutKey handles PUT /api/v1/keys/{provider}. An empty key is rejected;
// use DELETE to remove a credential.
func (h *Handler) PutKey(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("provider")
	if _, ok := h.providers.Lookup(providerID); !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}

	var req putKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key must not be empty")
		return
	}

	if err := h.creds.SetKey(r.Context(), providerID, req.Key); err != nil {
		h.logger.Error("failed to store key", "provider", providerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteKey handles DELETE /api/v1/keys/{provider}. Deleting an absent key
// is a no-op success.
func (h *Handler) DeleteKey(w http.ResponseWriter, r *http.Request) {
	providerID := r.PathValue("provider")
	if _, ok := h.providers.Lookup(providerID); !ok {
		writeError(w, http.StatusNotFound, "unknown provider")
		return
	}

	if err := h.creds.DeleteKey(r.Context(), providerID); err != nil {
		h.logger.Error("failed to delete key", "provider", providerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
