package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"tally-web/internal/model"
	"tally-web/internal/store"
)

type expenseItem struct {
	e model.Expense
}

func (i expenseItem) Title() string       { return i.e.Description }
func (i expenseItem) Description() string { return model.FormatAmount(i.e.Amount) }
func (i expenseItem) FilterValue() string { return i.e.Description }

type expensesLoadedMsg struct {
	items []model.Expense
	err   error
}

type savedMsg struct {
	exp     model.Expense
	created bool
}

type saveFailedMsg struct {
	errs    model.FieldErrors
	formErr string
}

type appModel struct {
	store *store.Store

	expenses list.Model
	// editing is the single open form; nil means everything is closed.
	// Opening a form always replaces this pointer, so two forms can never
	// be open at once.
	editing *editForm

	showHelp bool
	help     string
	status   string
	width    int
	height   int
}

func newAppModel(st *store.Store) appModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Expenses"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return appModel{store: st, expenses: l}
}

func (m appModel) Init() tea.Cmd {
	return loadExpensesCmd(m.store)
}

func loadExpensesCmd(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		items, err := st.List(context.Background())
		return expensesLoadedMsg{items: items, err: err}
	}
}

func submitCmd(st *store.Store, id int64, d model.Draft) tea.Cmd {
	return func() tea.Msg {
		var (
			exp model.Expense
			err error
		)
		if id == 0 {
			exp, err = st.Create(context.Background(), d)
		} else {
			exp, err = st.Update(context.Background(), id, d)
		}
		if err != nil {
			var verr *store.ValidationError
			switch {
			case errors.As(err, &verr):
				return saveFailedMsg{errs: verr.Fields}
			case errors.Is(err, store.ErrNotFound):
				return saveFailedMsg{formErr: "This expense no longer exists."}
			default:
				return saveFailedMsg{formErr: "Could not save: " + err.Error()}
			}
		}
		return savedMsg{exp: exp, created: id == 0}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.expenses.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case expensesLoadedMsg:
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.items))
		for _, e := range msg.items {
			items = append(items, expenseItem{e: e})
		}
		m.expenses.SetItems(items)
		return m, nil

	case savedMsg:
		m.editing = nil
		if msg.created {
			m.status = fmt.Sprintf("added %q", msg.exp.Description)
		} else {
			m.status = fmt.Sprintf("updated %q", msg.exp.Description)
		}
		return m, loadExpensesCmd(m.store)

	case saveFailedMsg:
		if m.editing != nil {
			m.editing.errs = msg.errs
			m.editing.formErr = msg.formErr
		}
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.editing != nil {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.expenses, cmd = m.expenses.Update(msg)
	return m, cmd
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "n":
		m.editing = newEditForm(0, model.Draft{})
		m.status = ""
		return m, nil
	case "enter":
		it, ok := m.expenses.SelectedItem().(expenseItem)
		if !ok {
			return m, nil
		}
		m.editing = newEditForm(it.e.ID, model.DraftOf(it.e))
		m.status = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.expenses, cmd = m.expenses.Update(msg)
	return m, cmd
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.editing
	switch msg.String() {
	case "esc":
		// Discard the draft; the list is untouched.
		m.editing = nil
		return m, nil
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return m, nil
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return m, nil
	case "enter":
		d := f.draft()
		if _, _, _, errs := store.Validate(d); errs != nil {
			f.errs = errs
			return m, nil
		}
		return m, submitCmd(m.store, f.id, d)
	}
	return m, f.update(msg)
}

func (m appModel) View() string {
	if m.showHelp {
		return m.helpView()
	}
	if m.editing != nil {
		return m.editing.view(m.width)
	}
	out := m.expenses.View()
	if m.status != "" {
		out += "\n" + statusStyle.Render(m.status)
	}
	return out
}
