package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tally-web/internal/model"
	"tally-web/internal/store"
)

// editForm is the inline edit state: one instance exists at a time (nil on
// the app model means every row shows as a plain row). id 0 is the create
// form.
type editForm struct {
	id      int64
	desc    textinput.Model
	amount  textinput.Model
	note    textinput.Model
	focus   int
	errs    model.FieldErrors
	formErr string
}

const formFields = 3

func newEditForm(id int64, draft model.Draft) *editForm {
	f := &editForm{id: id}

	f.desc = textinput.New()
	f.desc.Placeholder = "Coffee"
	f.desc.CharLimit = 140
	f.desc.SetValue(draft.Description)
	f.desc.Focus()

	f.amount = textinput.New()
	f.amount.Placeholder = "3.50"
	f.amount.CharLimit = 12
	f.amount.SetValue(draft.Amount)

	f.note = textinput.New()
	f.note.Placeholder = "optional note (markdown)"
	f.note.SetValue(draft.Note)

	return f
}

func (f *editForm) draft() model.Draft {
	return model.Draft{
		Description: f.desc.Value(),
		Amount:      f.amount.Value(),
		Note:        f.note.Value(),
	}
}

func (f *editForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.desc, &f.amount, &f.note}
}

func (f *editForm) setFocus(i int) {
	f.focus = ((i % formFields) + formFields) % formFields
	for n, in := range f.inputs() {
		if n == f.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// update forwards a key to the focused input and revalidates the draft so
// errors track every edit.
func (f *editForm) update(msg tea.Msg) tea.Cmd {
	in := f.inputs()[f.focus]
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	_, _, _, f.errs = store.Validate(f.draft())
	f.formErr = ""
	return cmd
}

func (f *editForm) view(width int) string {
	title := "New expense"
	if f.id != 0 {
		title = "Edit expense"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	if f.formErr != "" {
		b.WriteString(errStyle.Render(f.formErr))
		b.WriteString("\n\n")
	}

	fields := []struct {
		label string
		in    textinput.Model
		key   string
	}{
		{"Description", f.desc, "description"},
		{"Amount", f.amount, "amount"},
		{"Note", f.note, "note"},
	}
	for _, fd := range fields {
		b.WriteString(labelStyle.Render(fd.label))
		b.WriteString("\n")
		b.WriteString(fd.in.View())
		b.WriteString("\n")
		if msg, ok := f.errs[fd.key]; ok {
			b.WriteString(errStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	if preview := renderNote(f.note.Value(), width-8); preview != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Preview"))
		b.WriteString("\n")
		b.WriteString(preview)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render("enter save · esc cancel · tab next field"))

	box := formBoxStyle
	if width > 8 {
		box = box.Width(width - 4)
	}
	return box.Render(b.String())
}
