// Package live coordinates in-place editing of the expense list for one
// client session: which form is open, what each form's draft holds, and how
// committed changes flow back into the canonical collection and out to the
// client as declarative effects.
package live

import "fmt"

// FormID names a form instance. Positive values are the edit form bound to
// that expense id; FormCreate is the single unbound create form; zero means
// "no form".
type FormID int64

const FormCreate FormID = -1

// Bound reports the expense id the form edits, if any.
func (id FormID) Bound() (int64, bool) {
	if id > 0 {
		return int64(id), true
	}
	return 0, false
}

func (id FormID) String() string {
	switch {
	case id == FormCreate:
		return "create"
	case id > 0:
		return fmt.Sprintf("expense-%d", int64(id))
	default:
		return "none"
	}
}

// RowSelector and FormSelector are the contract between the render layer
// and the effects the coordinator emits; templates must use the same ids.
func RowSelector(id int64) string {
	return fmt.Sprintf("#row-%d", id)
}

func FormSelector(id FormID) string {
	if id == FormCreate {
		return "#form-new"
	}
	return fmt.Sprintf("#form-%d", int64(id))
}

// EffectTarget is the element an action key is addressed to: the row for
// bound forms (its render-time bindings cover both the row and its form),
// the form itself for the rowless create form.
func EffectTarget(id FormID) string {
	if n, ok := id.Bound(); ok {
		return RowSelector(n)
	}
	return FormSelector(FormCreate)
}
