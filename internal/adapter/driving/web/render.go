package web

import (
	"bytes"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/polyask/polyask/internal/domain/model"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title string
	Nav   string // active nav item: "search", "history", "settings"
	User  string
}

// LoginPageData is the template data for the login page.
type LoginPageData struct {
	PageData
	Error string
}

// providerView is one provider row as the templates see it.
type providerView struct {
	ID          string
	DisplayName string
	Available   bool
	Configured  bool
}

// SearchPageData is the template data for the search page.
type SearchPageData struct {
	PageData
	Providers []providerView
}

// historyEntryView is one past search with pre-rendered markdown bodies.
type historyEntryView struct {
	Query     string
	Summary   template.HTML
	CreatedAt time.Time
	Answers   []historyAnswerView
}

type historyAnswerView struct {
	DisplayName string
	Content     template.HTML
	Failed      bool
	ErrMessage  string
}

// HistoryPageData is the template data for the history page.
type HistoryPageData struct {
	PageData
	Entries []historyEntryView
}

// SettingsPageData is the template data for the API key settings page.
type SettingsPageData struct {
	PageData
	Providers []providerView
	Saved     bool
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer creates a Renderer by parsing the embedded page templates
// against the shared layout.
func NewRenderer(templateFS fs.FS, logger *slog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string { return t.Local().Format("Jan 2, 2006 15:04") },
		"markdown":   func(s string) template.HTML { return template.HTML(RenderMarkdown(s)) },
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html"))

	pages := map[string]string{
		"login":    "templates/login.html",
		"search":   "templates/search.html",
		"history":  "templates/history.html",
		"settings": "templates/settings.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{templates: templates, logger: logger}
}

// renderPage renders a named page template with HTTP 200.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given status code.
// The page is buffered first so a template error never produces a half-sent
// response.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// historyEntries converts stored search records into render-ready views,
// mapping provider IDs to display names and markdown to sanitized HTML.
func historyEntries(records []model.SearchRecord, displayName func(string) string) []historyEntryView {
	entries := make([]historyEntryView, 0, len(records))
	for _, rec := range records {
		entry := historyEntryView{
			Query:     rec.Query,
			Summary:   template.HTML(RenderMarkdown(rec.Summary)),
			CreatedAt: rec.CreatedAt,
		}
		for _, a := range rec.Answers {
			entry.Answers = append(entry.Answers, historyAnswerView{
				DisplayName: displayName(a.ProviderID),
				Content:     template.HTML(RenderMarkdown(a.Content)),
				Failed:      a.Failed(),
				ErrMessage:  a.ErrMessage,
			})
		}
		entries = append(entries, entry)
	}
	return entries
}
