package web

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// noteRenderer turns an expense note into HTML. Raw HTML passthrough stays
// off (no html.WithUnsafe), so the output is safe to embed unescaped.
var noteRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

func renderNoteHTML(note string) template.HTML {
	note = strings.TrimSpace(note)
	if note == "" {
		return ""
	}
	var b bytes.Buffer
	if err := noteRenderer.Convert([]byte(note), &b); err != nil {
		// Fall back to the escaped source rather than losing the note.
		return template.HTML("<pre>" + template.HTMLEscapeString(note) + "</pre>")
	}
	return template.HTML(b.String())
}
