package web

import "embed"

// TemplateFS holds the embedded HTML page templates.
//
//go:embed templates/*.html
var TemplateFS embed.FS

// StaticFS holds the embedded static assets (CSS and the polling script).
//
//go:embed static/*
var StaticFS embed.FS
