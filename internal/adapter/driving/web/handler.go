// Package web implements the HTML GUI driving adapter. Pages are rendered
// server-side with html/template; the search page drives the JSON API from
// a small polling script to show answers as they arrive.
package web

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/polyask/polyask/internal/domain/port/driven"
)

// sessionCookieName carries the signed session token. It must match the
// cookie the JSON API adapter authenticates against.
const sessionCookieName = "polyask_session"

// Handler is the web GUI driving adapter.
type Handler struct {
	creds     driven.CredentialStore
	history   driven.HistoryStore
	providers driven.ProviderRegistry
	sessions  driven.Sessions
	renderer  *Renderer
	user      string
	password  string
	logger    *slog.Logger
}

// NewHandler creates a Handler. user and password are the panel login
// credentials from configuration.
func NewHandler(
	creds driven.CredentialStore,
	history driven.HistoryStore,
	providers driven.ProviderRegistry,
	sessions driven.Sessions,
	renderer *Renderer,
	user, password string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		creds:     creds,
		history:   history,
		providers: providers,
		sessions:  sessions,
		renderer:  renderer,
		user:      user,
		password:  password,
		logger:    logger,
	}
}

// requireSession redirects to the login page when the request has no valid
// session cookie.
func (h *Handler) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		user, err := h.sessions.Verify(cookie.Value)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		r.Header.Set("X-Panel-User", user)
		next(w, r)
	}
}

// LoginPage renders the login form.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	csrfToken(w, r)
	h.renderer.renderPage(w, "login", LoginPageData{
		PageData: PageData{Title: "Sign in"},
	})
}

// Login handles the login form submission. Credentials are compared in
// constant time; a mismatch re-renders the form with a generic error.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	user := r.FormValue("username")
	password := r.FormValue("password")

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(h.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.password)) == 1
	if !userOK || !passOK {
		h.logger.Warn("failed login attempt", "user", user)
		csrfToken(w, r)
		h.renderer.renderPageStatus(w, http.StatusUnauthorized, "login", LoginPageData{
			PageData: PageData{Title: "Sign in"},
			Error:    "Invalid username or password.",
		})
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue session", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SearchPage renders the main search page with provider checkboxes.
func (h *Handler) SearchPage(w http.ResponseWriter, r *http.Request) {
	csrfToken(w, r)
	h.renderer.renderPage(w, "search", SearchPageData{
		PageData:  PageData{Title: "Search", Nav: "search", User: r.Header.Get("X-Panel-User")},
		Providers: h.providerViews(r),
	})
}

// HistoryPage renders past searches, most recent first.
func (h *Handler) HistoryPage(w http.ResponseWriter, r *http.Request) {
	records, err := h.history.Load(r.Context())
	if err != nil {
		h.logger.Error("failed to load history", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.renderPage(w, "history", HistoryPageData{
		PageData: PageData{Title: "History", Nav: "history", User: r.Header.Get("X-Panel-User")},
		Entries:  historyEntries(records, h.providers.DisplayName),
	})
}

// SettingsPage renders the API key settings page.
func (h *Handler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	csrfToken(w, r)
	h.renderer.renderPage(w, "settings", SettingsPageData{
		PageData:  PageData{Title: "Settings", Nav: "settings", User: r.Header.Get("X-Panel-User")},
		Providers: h.providerViews(r),
		Saved:     r.URL.Query().Get("saved") == "1",
	})
}

// SaveKey stores an API key submitted from the settings form.
func (h *Handler) SaveKey(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	providerID := r.FormValue("provider")
	key := r.FormValue("key")
	if _, ok := h.providers.Lookup(providerID); !ok || key == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := h.creds.SetKey(r.Context(), providerID, key); err != nil {
		h.logger.Error("failed to store key", "provider", providerID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

// RemoveKey deletes a stored API key from the settings form.
func (h *Handler) RemoveKey(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return
	}

	providerID := r.FormValue("provider")
	if _, ok := h.providers.Lookup(providerID); !ok {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := h.creds.DeleteKey(r.Context(), providerID); err != nil {
		h.logger.Error("failed to delete key", "provider", providerID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

// providerViews joins the registry's descriptors with the configured-key
// flags. A failure to list credentials degrades to "nothing configured".
func (h *Handler) providerViews(r *http.Request) []providerView {
	configured := make(map[string]bool)
	creds, err := h.creds.List(r.Context())
	if err != nil {
		h.logger.Warn("failed to list credentials", "error", err)
	}
	for _, c := range creds {
		configured[c.ProviderID] = c.Usable()
	}

	descriptors := h.providers.Descriptors()
	views := make([]providerView, 0, len(descriptors))
	for _, d := range descriptors {
		views = append(views, providerView{
			ID:          d.ID,
			DisplayName: d.DisplayName,
			Available:   d.Available,
			Configured:  configured[d.ID],
		})
	}
	return views
}
