package handler

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	tmplIndex       = "index.html"
	tmplAll         = "all.html"
	tmplGoal        = "goal.html"
	tmplProfile     = "profile.html"
	tmplRequest     = "request.html"
	tmplRequestDone = "request_done.html"
	tmplBooking     = "booking.html"
	tmplBookingDone = "booking_done.html"
)

var templateFuncs = template.FuncMap{
	"lower":    strings.ToLower,
	"rating":   func(r float64) string { return fmt.Sprintf("%.1f", r) },
	"truncate": truncate,
}

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
