package web

import (
	"fmt"
	"html/template"

	"tally-web/internal/live"
	"tally-web/internal/model"
)

type pageVM struct {
	Rows   []rowVM
	Create formVM
}

type rowVM struct {
	Expense  model.Expense
	Selector string
	Hidden   bool
	NoteHTML template.HTML
	Form     formVM
}

type formVM struct {
	// Param is the form's wire name ("3", "new") used in endpoint URLs.
	Param    string
	Selector string
	Create   bool
	Draft    model.Draft
	Errors   model.FieldErrors
	Err      string
	Hidden   bool
}

func pageVMOf(snap live.Snapshot) pageVM {
	vm := pageVM{Create: formVMOf(snap.Create)}
	for i, e := range snap.Items {
		fv := snap.Forms[i]
		vm.Rows = append(vm.Rows, rowVM{
			Expense:  e,
			Selector: live.RowSelector(e.ID),
			Hidden:   fv.Visible,
			NoteHTML: renderNoteHTML(e.Note),
			Form:     formVMOf(fv),
		})
	}
	return vm
}

// listVM renders the inner content of #expense-list (rows plus their
// forms); the create form lives outside the list and is patched on its own.
func listVM(snap live.Snapshot) pageVM {
	return pageVMOf(snap)
}

func formVMOf(fv live.FormView) formVM {
	param := "new"
	if n, ok := fv.ID.Bound(); ok {
		param = fmt.Sprintf("%d", n)
	}
	return formVM{
		Param:    param,
		Selector: live.FormSelector(fv.ID),
		Create:   fv.ID == live.FormCreate,
		Draft:    fv.Draft,
		Errors:   fv.Errors,
		Err:      fv.Err,
		Hidden:   !fv.Visible,
	}
}
