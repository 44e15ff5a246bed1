package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally-web/internal/effect"
	"tally-web/internal/live"
	"tally-web/internal/model"
	"tally-web/internal/store"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr  string
	Store *store.Store
}

type Server struct {
	cfg  ServerConfig
	tmpl *template.Template

	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	closed   bool
	sessions map[string]*webSession
}

type webSession struct {
	live     *live.Session
	disp     *effect.Dispatcher
	lastSeen time.Time

	streamMu   sync.Mutex
	streamStop chan struct{}
}

// claimStream hands the frame stream to the calling reader. A session has
// one reader at a time; a newer connection (a second tab, a reconnect)
// supersedes the old one so frames are never split between readers.
func (ws *webSession) claimStream() <-chan struct{} {
	ws.streamMu.Lock()
	defer ws.streamMu.Unlock()
	if ws.streamStop != nil {
		close(ws.streamStop)
	}
	ws.streamStop = make(chan struct{})
	return ws.streamStop
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("web: missing store")
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"money":    model.FormatAmount,
		"markdown": renderNoteHTML,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		done:     make(chan struct{}),
		sessions: map[string]*webSession{},
	}
	go s.sweepIdleSessions()
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Close stops the idle sweeper and tears down every session. The server
// rejects new sessions afterwards.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		s.closed = true
		for sid, ws := range s.sessions {
			ws.live.Close()
			ws.disp.Close()
			delete(s.sessions, sid)
		}
		s.mu.Unlock()
	})
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/expenses", http.StatusFound)
	})
	mux.HandleFunc("GET /expenses", s.handleExpenses)
	mux.HandleFunc("GET /expenses/events", s.handleEvents)
	mux.HandleFunc("POST /expenses/open", s.handleOpen)
	mux.HandleFunc("POST /expenses/new", s.handleNew)
	mux.HandleFunc("POST /expenses/cancel", s.handleCancel)
	mux.HandleFunc("POST /expenses/field", s.handleField)
	mux.HandleFunc("POST /expenses/submit", s.handleSubmit)
	mux.HandleFunc("GET /static/app.js", s.handleAppJS)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	return mux
}

const (
	sessionCookie = "tally_sid"
	sessionIdle   = 30 * time.Minute
)

// sessionFor finds the caller's session by cookie, creating (and starting)
// one as needed. Each session is an independent sequential unit of work.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*webSession, error) {
	sid := ""
	if c, err := r.Cookie(sessionCookie); err == nil {
		sid = strings.TrimSpace(c.Value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("web: server closed")
	}
	if sid != "" {
		if ws, ok := s.sessions[sid]; ok {
			ws.lastSeen = time.Now()
			return ws, nil
		}
	}

	sid = uuid.NewString()
	disp := effect.NewDispatcher(64)
	sess := live.NewSession(sid, s.cfg.Store, disp, live.Hooks{
		ListChanged: func(snap live.Snapshot) {
			html, err := s.renderTemplate("expense_list.html", listVM(snap))
			if err != nil {
				log.Printf("web: render list: %v", err)
				return
			}
			disp.PatchElement("#expense-list", effect.PatchInner, html)
		},
		FormChanged: func(fv live.FormView) {
			html, err := s.renderTemplate("expense_form.html", formVMOf(fv))
			if err != nil {
				log.Printf("web: render form: %v", err)
				return
			}
			disp.PatchElement(live.FormSelector(fv.ID), effect.PatchOuter, html)
		},
	})
	// Sessions outlive the request that created them.
	if err := sess.Start(context.WithoutCancel(r.Context())); err != nil {
		disp.Close()
		return nil, err
	}

	ws := &webSession{live: sess, disp: disp, lastSeen: time.Now()}
	s.sessions[sid] = ws

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ws, nil
}

func (s *Server) sweepIdleSessions() {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
		}
		cutoff := time.Now().Add(-sessionIdle)
		s.mu.Lock()
		for sid, ws := range s.sessions {
			if ws.lastSeen.Before(cutoff) {
				ws.live.Close()
				ws.disp.Close()
				delete(s.sessions, sid)
			}
		}
		s.mu.Unlock()
	}
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	ws, err := s.sessionFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	snap, ok := ws.live.Snapshot()
	if !ok {
		http.Error(w, "session closed", http.StatusServiceUnavailable)
		return
	}
	s.writeHTMLTemplate(w, "page.html", pageVMOf(snap))
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	ws, err := s.sessionFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "bad expense id", http.StatusBadRequest)
		return
	}
	ws.live.Enqueue(live.RowClicked{ItemID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	ws, err := s.sessionFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ws.live.Enqueue(live.NewClicked{})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	ws, err := s.sessionFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	id, err := parseFormID(r.URL.Query().Get("form"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws.live.Enqueue(live.CancelForm{Form: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	ws, err := s.sessionFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	id, err := parseFormID(r.URL.Query().Get("form"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	field := strings.TrimSpace(r.URL.Query().Get("field"))
	if !validField(field) {
		http.Error(w, "bad field", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ws.live.Enqueue(live.FieldChanged{Form: id, Field: field, Value: r.PostFormValue(field)})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ws, err := s.sessionFor(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	id, err := parseFormID(r.URL.Query().Get("form"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// The submitted body is the authoritative draft: replay every field
	// ahead of the submit so debounce-lost edits can't go missing. All
	// events land on the session queue in this order.
	for _, field := range []string{"description", "amount", "note"} {
		if r.PostForm.Has(field) {
			ws.live.Enqueue(live.FieldChanged{Form: id, Field: field, Value: r.PostFormValue(field)})
		}
	}
	ws.live.Enqueue(live.SubmitForm{Form: id})
	w.WriteHeader(http.StatusNoContent)
}

func parseFormID(q string) (live.FormID, error) {
	q = strings.TrimSpace(q)
	if q == "new" {
		return live.FormCreate, nil
	}
	n, err := strconv.ParseInt(q, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("bad form id")
	}
	return live.FormID(n), nil
}

func validField(f string) bool {
	switch f {
	case "description", "amount", "note":
		return true
	}
	return false
}

func (s *Server) handleAppJS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.js")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(b)
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(b)
}
