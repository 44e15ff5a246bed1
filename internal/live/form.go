package live

import (
	"context"
	"errors"

	"tally-web/internal/model"
	"tally-web/internal/store"
)

// NotificationKind tags a committed change reported by a form.
type NotificationKind int

const (
	NotifyCreated NotificationKind = iota + 1
	NotifyUpdated
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyCreated:
		return "created"
	case NotifyUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Notification is the message a form sends its owning controller after a
// successful commit. Failed submits never produce one.
type Notification struct {
	Kind    NotificationKind
	Expense model.Expense
}

// Form is the editable counterpart of one row (or, for FormCreate, of the
// not-yet-existing row). It owns a draft buffer and validation state and
// talks to the store on submit; it never decides visibility on data-driven
// outcomes, that is the controller's call.
type Form struct {
	id      FormID
	draft   model.Draft
	errors  model.FieldErrors
	formErr string
	store   *store.Store
}

func newForm(id FormID, st *store.Store) *Form {
	return &Form{id: id, store: st}
}

func (f *Form) ID() FormID { return f.id }

// Reset reseeds the draft (a copy of the bound expense, or empty for the
// create form) and clears all error state. Called when the form opens and
// when edits are discarded.
func (f *Form) Reset(bound *model.Expense) {
	if bound != nil {
		f.draft = model.DraftOf(*bound)
	} else {
		f.draft = model.Draft{}
	}
	f.errors = nil
	f.formErr = ""
}

// SetField merges one field change into the draft and revalidates. The form
// stays open; persisted data is untouched.
func (f *Form) SetField(field, value string) {
	switch field {
	case "description":
		f.draft.Description = value
	case "amount":
		f.draft.Amount = value
	case "note":
		f.draft.Note = value
	default:
		return
	}
	_, _, _, ferr := store.Validate(f.draft)
	f.errors = ferr
	f.formErr = ""
}

// Submit persists the draft. On success the returned notification must be
// handed to the controller; for the create form the draft is cleared for
// the next entry. On failure the form keeps its draft, adopts the returned
// errors and no notification is produced.
func (f *Form) Submit(ctx context.Context) *Notification {
	var (
		exp  model.Expense
		err  error
		kind NotificationKind
	)
	if itemID, ok := f.id.Bound(); ok {
		exp, err = f.store.Update(ctx, itemID, f.draft)
		kind = NotifyUpdated
	} else {
		exp, err = f.store.Create(ctx, f.draft)
		kind = NotifyCreated
	}
	if err != nil {
		var verr *store.ValidationError
		switch {
		case errors.As(err, &verr):
			f.errors = verr.Fields
			f.formErr = ""
		case errors.Is(err, store.ErrNotFound):
			f.errors = nil
			f.formErr = "This expense no longer exists. Cancel to refresh."
		default:
			f.errors = nil
			f.formErr = "Could not save. Try again."
		}
		return nil
	}

	if f.id == FormCreate {
		f.Reset(nil)
	} else {
		f.Reset(&exp)
	}
	return &Notification{Kind: kind, Expense: exp}
}

// View is an immutable snapshot for rendering.
func (f *Form) View(visible bool) FormView {
	errs := make(model.FieldErrors, len(f.errors))
	for k, v := range f.errors {
		errs[k] = v
	}
	return FormView{
		ID:      f.id,
		Draft:   f.draft,
		Errors:  errs,
		Err:     f.formErr,
		Visible: visible,
	}
}

// FormView is what the render layer sees of a form.
type FormView struct {
	ID      FormID
	Draft   model.Draft
	Errors  model.FieldErrors
	Err     string
	Visible bool
}
