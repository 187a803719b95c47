package web

import "embed"

// TemplatesFS embeds the page and chart templates.
//
//go:embed templates/*.html templates/*.svg
var TemplatesFS embed.FS

// StaticFS embeds static assets (css).
//
//go:embed static/*
var StaticFS embed.FS
