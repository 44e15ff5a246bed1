package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tally-web/internal/store"
	"tally-web/internal/tui"
)

type App struct {
	DB string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "tally",
		Short:        "Local expense list with in-place editing (TUI + web)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tally

  # Serve the web UI
  tally serve --addr 127.0.0.1:3345

  # Scriptable commands
  tally list --json
  tally add -d "Coffee" -a 3.00
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) > 0 {
				return cmd.Help()
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()
			return tui.Run(st)
		},
	}

	cmd.PersistentFlags().StringVar(&app.DB, "db", "", "path to the sqlite database (default ~/.tally/tally.sqlite)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newWebTUICmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDeleteCmd(app))

	return cmd
}

func (app *App) dbPath() (string, error) {
	if p := strings.TrimSpace(app.DB); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tally", "tally.sqlite"), nil
}

func (app *App) openStore(ctx context.Context) (*store.Store, error) {
	path, err := app.dbPath()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, path)
}
