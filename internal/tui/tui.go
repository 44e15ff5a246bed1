package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"tally-web/internal/store"
)

func Run(st *store.Store) error {
	m := newAppModel(st)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
