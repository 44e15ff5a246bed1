package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

const helpMD = `
# tally

A small expense list. Rows edit in place.

## Keys

| Key | Action |
| --- | --- |
| enter | edit the selected expense |
| n | new expense |
| esc | cancel the open form |
| tab / shift+tab | next / previous field |
| ? | toggle this help |
| q | quit |

Notes accept **markdown**.
`

func (m appModel) helpView() string {
	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}
	wrap := 72
	if m.width > 2 && m.width-2 < wrap {
		wrap = m.width - 2
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpMD
	}
	out, err := r.Render(helpMD)
	if err != nil {
		return helpMD
	}
	return strings.TrimRight(out, "\n") + "\n" + statusStyle.Render("press any key to close")
}
