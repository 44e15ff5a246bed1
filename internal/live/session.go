package live

import (
	"context"
	"fmt"
	"log"
	"sync"

	"tally-web/internal/effect"
	"tally-web/internal/model"
	"tally-web/internal/store"
)

// Event is one user interaction. Events from one session are handled
// strictly in arrival order by a single goroutine; sessions share nothing
// but the store.
type Event interface{ isEvent() }

type (
	// RowClicked opens the edit form for one expense.
	RowClicked struct{ ItemID int64 }
	// NewClicked opens the create form.
	NewClicked struct{}
	// FieldChanged merges one field edit into the open form's draft.
	FieldChanged struct {
		Form  FormID
		Field string
		Value string
	}
	// SubmitForm persists the open form's draft.
	SubmitForm struct{ Form FormID }
	// CancelForm discards the open form's draft and restores the row.
	CancelForm struct{ Form FormID }

	snapshotReq struct{ reply chan Snapshot }
)

func (RowClicked) isEvent()   {}
func (NewClicked) isEvent()   {}
func (FieldChanged) isEvent() {}
func (SubmitForm) isEvent()   {}
func (CancelForm) isEvent()   {}
func (snapshotReq) isEvent()  {}

// Snapshot is the full render state: items in display order, one form view
// per item (plus the create form), and the visibility token.
type Snapshot struct {
	Items  []model.Expense
	Forms  []FormView // same order as Items
	Create FormView
	Open   FormID
}

// Hooks let the render layer react to state changes with element patches.
// Both are invoked from the session goroutine and must not block for long.
// Pure visibility transitions never trigger a hook; they go out as effects.
type Hooks struct {
	ListChanged func(Snapshot)
	FormChanged func(FormView)
}

// Session is one client's sequential unit of work.
type Session struct {
	id    string
	store *store.Store
	disp  *effect.Dispatcher
	hooks Hooks
	logf  func(format string, args ...any)

	vis    Visibility
	ctrl   *Controller
	forms  map[FormID]*Form
	notifs chan Notification

	events    chan Event
	closed    chan struct{}
	closeOnce sync.Once
}

func NewSession(id string, st *store.Store, disp *effect.Dispatcher, hooks Hooks) *Session {
	return &Session{
		id:     id,
		store:  st,
		disp:   disp,
		hooks:  hooks,
		logf:   log.Printf,
		ctrl:   NewController(st),
		forms:  map[FormID]*Form{},
		notifs: make(chan Notification, 8),
		events: make(chan Event, 64),
		closed: make(chan struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// Start loads the collection and begins processing events.
func (s *Session) Start(ctx context.Context) error {
	if err := s.ctrl.Load(ctx); err != nil {
		return fmt.Errorf("session %s: %w", s.id, err)
	}
	go s.loop(ctx)
	return nil
}

// Enqueue hands an event to the session. It blocks only while the (large)
// event buffer is full and returns immediately once the session is closed.
func (s *Session) Enqueue(ev Event) {
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}

// Snapshot asks the session goroutine for its current state, so reads see a
// consistent point between events.
func (s *Session) Snapshot() (Snapshot, bool) {
	req := snapshotReq{reply: make(chan Snapshot, 1)}
	select {
	case s.events <- req:
	case <-s.closed:
		return Snapshot{}, false
	}
	select {
	case snap := <-req.reply:
		return snap, true
	case <-s.closed:
		return Snapshot{}, false
	}
}

func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *Session) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-s.closed:
			return
		case ev := <-s.events:
			s.handle(ctx, ev)
		}
	}
}

func (s *Session) handle(ctx context.Context, ev Event) {
	switch ev := ev.(type) {
	case RowClicked:
		s.handleRowClicked(ev.ItemID)
	case NewClicked:
		s.handleNewClicked()
	case FieldChanged:
		s.handleFieldChanged(ev)
	case SubmitForm:
		s.handleSubmit(ctx, ev.Form)
	case CancelForm:
		s.handleCancel(ev.Form)
	case snapshotReq:
		ev.reply <- s.snapshot()
	default:
		s.logf("live: session %s: unknown event %T", s.id, ev)
	}
}

func (s *Session) handleRowClicked(itemID int64) {
	item, ok := s.itemByID(itemID)
	if !ok {
		s.logf("live: session %s: click on unknown expense %d", s.id, itemID)
		return
	}
	effs := s.vis.ShowUpdate(itemID)
	if len(effs) == 0 {
		// Row of the already-open form; nothing to do.
		return
	}
	f := s.ensureForm(FormID(itemID))
	f.Reset(&item)
	s.formChanged(f)
	s.dispatch(effs)
}

func (s *Session) handleNewClicked() {
	effs := s.vis.ShowCreate()
	if len(effs) == 0 {
		return
	}
	f := s.ensureForm(FormCreate)
	f.Reset(nil)
	s.formChanged(f)
	s.dispatch(effs)
}

func (s *Session) handleFieldChanged(ev FieldChanged) {
	if s.vis.Open() != ev.Form {
		// Stale input from a form that was closed in the meantime.
		return
	}
	f := s.ensureForm(ev.Form)
	f.SetField(ev.Field, ev.Value)
	s.formChanged(f)
}

func (s *Session) handleSubmit(ctx context.Context, id FormID) {
	if s.vis.Open() != id {
		return
	}
	f := s.ensureForm(id)
	n := f.Submit(ctx)
	if n == nil {
		// Validation or form-level error: redisplay, form stays open,
		// nothing is dispatched.
		s.formChanged(f)
		return
	}
	select {
	case s.notifs <- *n:
	default:
		s.logf("live: session %s: notification queue full, dropping %s", s.id, n.Kind)
	}
	s.drainNotifications(ctx, id)
}

// drainNotifications feeds queued commit notifications to the controller
// within the same turn as the submit that produced them, keeping delivery
// ordered per session.
func (s *Session) drainNotifications(ctx context.Context, origin FormID) {
	for {
		select {
		case n := <-s.notifs:
			eff, ok := s.ctrl.Apply(ctx, n)
			if !ok {
				continue
			}
			// Token first, patch second, transition last: the row must hold
			// its new content before the client reveals it. Hide's own
			// instruction duplicates the controller's effect, so it is
			// discarded and the controller's is the one on the wire.
			s.vis.Hide(origin)
			s.listChanged()
			s.formChanged(s.ensureForm(origin))
			s.disp.Dispatch(eff)
		default:
			return
		}
	}
}

func (s *Session) handleCancel(id FormID) {
	effs := s.vis.Hide(id)
	if len(effs) == 0 {
		return
	}
	f := s.ensureForm(id)
	if itemID, ok := id.Bound(); ok {
		if item, found := s.itemByID(itemID); found {
			f.Reset(&item)
		} else {
			f.Reset(nil)
		}
	} else {
		f.Reset(nil)
	}
	s.formChanged(f)
	s.dispatch(effs)
}

func (s *Session) dispatch(effs []effect.Effect) {
	for _, e := range effs {
		s.disp.Dispatch(e)
	}
}

func (s *Session) formChanged(f *Form) {
	if s.hooks.FormChanged == nil {
		return
	}
	s.hooks.FormChanged(f.View(s.vis.Open() == f.ID()))
}

func (s *Session) listChanged() {
	if s.hooks.ListChanged == nil {
		return
	}
	s.hooks.ListChanged(s.snapshot())
}

func (s *Session) ensureForm(id FormID) *Form {
	if f, ok := s.forms[id]; ok {
		return f
	}
	f := newForm(id, s.store)
	if itemID, ok := id.Bound(); ok {
		if item, found := s.itemByID(itemID); found {
			f.Reset(&item)
		}
	}
	s.forms[id] = f
	return f
}

func (s *Session) itemByID(id int64) (model.Expense, bool) {
	for _, e := range s.ctrl.Items() {
		if e.ID == id {
			return e, true
		}
	}
	return model.Expense{}, false
}

func (s *Session) snapshot() Snapshot {
	items := s.ctrl.Items()
	snap := Snapshot{
		Items: append([]model.Expense(nil), items...),
		Forms: make([]FormView, 0, len(items)),
		Open:  s.vis.Open(),
	}
	for _, it := range items {
		f := s.ensureForm(FormID(it.ID))
		snap.Forms = append(snap.Forms, f.View(snap.Open == f.ID()))
	}
	snap.Create = s.ensureForm(FormCreate).View(snap.Open == FormCreate)
	return snap
}
