package webtui

import (
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
)

const (
	ptyBufSize = 16 * 1024
	writeWait  = 5 * time.Second
	pingEvery  = 30 * time.Second
)

// The wire protocol: binary frames are raw terminal bytes in both
// directions; text frames are JSON control messages from the page.
type controlMsg struct {
	Resize *resizeMsg `json:"resize"`
}

type resizeMsg struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

func parseControl(data []byte) (cols, rows int, ok bool) {
	var m controlMsg
	if json.Unmarshal(data, &m) != nil || m.Resize == nil {
		return 0, 0, false
	}
	if m.Resize.Cols <= 0 || m.Resize.Rows <= 0 {
		return 0, 0, false
	}
	return m.Resize.Cols, m.Resize.Rows, true
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  ptyBufSize,
	WriteBufferSize: ptyBufSize,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Basic same-origin check; good enough for localhost use.
		return strings.Contains(origin, "://"+strings.TrimSpace(r.Host))
	},
}

// tuiProc is one TUI child process on a pty.
type tuiProc struct {
	ptmx *os.File
	cmd  *exec.Cmd
}

func (s *Server) startTUI() (*tuiProc, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	var args []string
	if db := strings.TrimSpace(s.cfg.DBPath); db != "" {
		args = append(args, "--db", db)
	}
	// No subcommand => interactive TUI.
	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: 120, Rows: 40})
	if err != nil {
		return nil, err
	}
	return &tuiProc{ptmx: ptmx, cmd: cmd}, nil
}

func (p *tuiProc) resize(cols, rows int) {
	_ = pty.Setsize(p.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

func (p *tuiProc) stop() {
	_ = p.ptmx.Close()
	_ = p.cmd.Process.Kill()
	_, _ = p.cmd.Process.Wait()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	proc, err := s.startTUI()
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "start failed"),
			time.Now().Add(writeWait))
		return
	}
	defer proc.stop()

	// Either relay stopping (child exit, client gone) tears the pair down.
	done := make(chan struct{}, 2)
	go func() {
		relayOutput(conn, proc)
		done <- struct{}{}
	}()
	go func() {
		relayInput(conn, proc)
		done <- struct{}{}
	}()

	ping := time.NewTicker(pingEvery)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case <-ping.C:
			if conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)) != nil {
				return
			}
		}
	}
}

// relayOutput copies pty output to the client as binary frames.
func relayOutput(conn *websocket.Conn, proc *tuiProc) {
	buf := make([]byte, ptyBufSize)
	for {
		n, err := proc.ptmx.Read(buf)
		if n > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if conn.WriteMessage(websocket.BinaryMessage, buf[:n]) != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// relayInput feeds client frames to the pty: binary frames are keystrokes,
// text frames are control messages.
func relayInput(conn *websocket.Conn, proc *tuiProc) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		switch mt {
		case websocket.TextMessage:
			if cols, rows, ok := parseControl(data); ok {
				proc.resize(cols, rows)
			}
		case websocket.BinaryMessage:
			if len(data) == 0 {
				continue
			}
			if _, err := proc.ptmx.Write(data); err != nil {
				return
			}
		}
	}
}
