package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

var (
	noteRendererMu sync.Mutex
	// Cached per wrap width. Building a renderer is not cheap and the form
	// preview re-renders on every keystroke.
	noteRenderers = map[int]*glamour.TermRenderer{}
)

// renderNote renders a markdown note for terminal display, falling back to
// the raw text when rendering fails.
func renderNote(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	noteRendererMu.Lock()
	r := noteRenderers[width]
	if r == nil {
		style := "light"
		if termenv.HasDarkBackground() {
			style = "dark"
		}
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			noteRendererMu.Unlock()
			return md
		}
		noteRenderers[width] = rr
		r = rr
	}
	noteRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
