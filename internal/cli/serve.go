package cli

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tally-web/internal/web"
	"tally-web/internal/webtui"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTML UI",
		Long: strings.TrimSpace(`
Serve the expense list as server-rendered HTML on a local HTTP server.
Rows edit in place; updates are pushed to the browser over SSE.
`),
		Example: strings.TrimSpace(`
# Serve on localhost
tally serve --addr 127.0.0.1:3345
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return errors.New("serve: missing --addr")
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := web.NewServer(web.ServerConfig{Addr: listenAddr, Store: st})
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tally web UI on http://%s/expenses\n", ln.Addr())

			hs := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return hs.Serve(ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3345", "listen address")
	return cmd
}

func newWebTUICmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Serve the TUI in a browser terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return errors.New("webtui: missing --addr")
			}

			dbPath, err := app.dbPath()
			if err != nil {
				return err
			}

			srv, err := webtui.NewServer(webtui.ServerConfig{Addr: listenAddr, DBPath: dbPath})
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tally terminal on http://%s/terminal\n", ln.Addr())

			hs := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return hs.Serve(ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3346", "listen address")
	return cmd
}
