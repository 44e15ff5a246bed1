package live

import "tally-web/internal/effect"

// Visibility enforces the single-open-form invariant. The one authoritative
// token is open: zero when every form is closed, otherwise the id of the
// only visible form. Every transition updates the token and returns the
// declarative instructions for the client in the same step, so there is no
// window where two forms are marked visible.
//
// The action vocabulary is bound to elements at render time:
//   - showForm on a row hides the row and reveals its form (with transition);
//     on the create form it reveals the form.
//   - hideForm on a row hides its form and restores the row; on the create
//     form it just hides it.
type Visibility struct {
	open FormID
}

// Open returns the visibility token.
func (v *Visibility) Open() FormID {
	return v.open
}

// ShowCreate closes whatever is open and opens the create form.
// Idempotent: re-showing the open create form emits nothing.
func (v *Visibility) ShowCreate() []effect.Effect {
	return v.show(FormCreate)
}

// ShowUpdate closes whatever is open, hides the clicked row and opens its
// form. Clicking the row of the already-open form is a no-op.
func (v *Visibility) ShowUpdate(itemID int64) []effect.Effect {
	return v.show(FormID(itemID))
}

func (v *Visibility) show(target FormID) []effect.Effect {
	if target <= 0 && target != FormCreate {
		return nil
	}
	if v.open == target {
		return nil
	}
	var effs []effect.Effect
	if v.open != 0 {
		effs = append(effs, effect.Effect{Selector: EffectTarget(v.open), Action: effect.ActionHideForm})
	}
	effs = append(effs, effect.Effect{Selector: EffectTarget(target), Action: effect.ActionShowForm})
	v.open = target
	return effs
}

// Hide closes the given form if it is the open one, restoring its row. The
// create form has no row to restore. Hiding a closed form emits nothing.
func (v *Visibility) Hide(id FormID) []effect.Effect {
	if id == 0 || v.open != id {
		return nil
	}
	v.open = 0
	return []effect.Effect{{Selector: EffectTarget(id), Action: effect.ActionHideForm}}
}
