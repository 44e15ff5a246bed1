package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"tally-web/internal/model"
)

const (
	maxDescriptionLen = 140
	maxNoteLen        = 10_000
	maxAmountCents    = 100_000_000 // one million units
)

// Validate applies the draft rules and returns the parsed values. Forms run
// the same rules locally on each field change; Create/Update run them again
// before writing so the store never trusts its callers.
func Validate(d model.Draft) (desc string, cents int64, note string, ferr model.FieldErrors) {
	ferr = model.FieldErrors{}

	desc = strings.TrimSpace(d.Description)
	switch {
	case desc == "":
		ferr["description"] = "can't be blank"
	case utf8.RuneCountInString(desc) > maxDescriptionLen:
		ferr["description"] = fmt.Sprintf("too long (max %d characters)", maxDescriptionLen)
	}

	cents, err := model.ParseAmount(d.Amount)
	switch {
	case err != nil:
		ferr["amount"] = "must be a number like 3.50"
	case cents <= 0:
		ferr["amount"] = "must be greater than zero"
	case cents > maxAmountCents:
		ferr["amount"] = "too large"
	}

	note = strings.TrimSpace(d.Note)
	if utf8.RuneCountInString(note) > maxNoteLen {
		ferr["note"] = fmt.Sprintf("too long (max %d characters)", maxNoteLen)
	}

	if len(ferr) > 0 {
		return "", 0, "", ferr
	}
	return desc, cents, note, nil
}

// List returns all expenses in canonical display order.
func (s *Store) List(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, description, amount, note, created_at, updated_at
FROM expenses ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int64) (model.Expense, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, description, amount, note, created_at, updated_at
FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, ErrNotFound
	}
	return e, err
}

// Create validates the draft and inserts a new expense. A *ValidationError
// is returned when the draft is rejected.
func (s *Store) Create(ctx context.Context, d model.Draft) (model.Expense, error) {
	desc, cents, note, ferr := Validate(d)
	if ferr != nil {
		return model.Expense{}, &ValidationError{Fields: ferr}
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO expenses (description, amount, note, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		desc, cents, note, now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return model.Expense{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Expense{}, err
	}
	return s.Get(ctx, id)
}

// Update validates the draft and replaces the stored row. ErrNotFound is
// returned when the row no longer exists.
func (s *Store) Update(ctx context.Context, id int64, d model.Draft) (model.Expense, error) {
	desc, cents, note, ferr := Validate(d)
	if ferr != nil {
		return model.Expense{}, &ValidationError{Fields: ferr}
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
UPDATE expenses SET description = ?, amount = ?, note = ?, updated_at = ?
WHERE id = ?`,
		desc, cents, note, now.Format(time.RFC3339Nano), id)
	if err != nil {
		return model.Expense{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Expense{}, err
	}
	if n == 0 {
		return model.Expense{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(r rowScanner) (model.Expense, error) {
	var e model.Expense
	var created, updated string
	if err := r.Scan(&e.ID, &e.Description, &e.Amount, &e.Note, &created, &updated); err != nil {
		return model.Expense{}, err
	}
	var err error
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return model.Expense{}, fmt.Errorf("bad created_at for expense %d: %w", e.ID, err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return model.Expense{}, fmt.Errorf("bad updated_at for expense %d: %w", e.ID, err)
	}
	return e, nil
}
