package model

import "time"

// Expense is one row of the list. ID 0 means the record has not been
// persisted yet (the create form edits such a value). Expenses returned
// from the store are treated as immutable and replaced wholesale on update.
type Expense struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"` // cents
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Draft holds raw form input. Amount stays a string until validation so a
// form can echo back exactly what was typed, including garbage.
type Draft struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Note        string `json:"note,omitempty"`
}

// DraftOf seeds a draft from a persisted expense.
func DraftOf(e Expense) Draft {
	return Draft{
		Description: e.Description,
		Amount:      FormatAmount(e.Amount),
		Note:        e.Note,
	}
}

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string
