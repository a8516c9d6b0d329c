package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Login and logout are the only routes reachable without a session.
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)

	// Page routes.
	mux.HandleFunc("GET /{$}", h.requireSession(h.SearchPage))
	mux.HandleFunc("GET /history", h.requireSession(h.HistoryPage))
	mux.HandleFunc("GET /settings", h.requireSession(h.SettingsPage))
	mux.HandleFunc("POST /settings/keys", h.requireSession(h.SaveKey))
	mux.HandleFunc("POST /settings/keys/delete", h.requireSession(h.RemoveKey))
}
