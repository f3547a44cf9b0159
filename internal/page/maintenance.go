package page

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const DefaultMaintenanceMessage = "We're performing scheduled maintenance. Please check back soon."

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

type MaintenanceView struct {
	Site    Site
	Message template.HTML
}

// Maintenance renders the maintenance message, which editors write as
// Markdown.
func (c *Composer) Maintenance(site Site, message string) MaintenanceView {
	return MaintenanceView{
		Site:    site.WithPage("Under maintenance", "", nil, ""),
		Message: Markdown(first(message, DefaultMaintenanceMessage)),
	}
}

// Markdown converts src to sanitized HTML.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		slog.Error("Failed to render markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
