package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tally-web/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(context.Background(), filepath.Join(t.TempDir(), "tally.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreateListUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t)

	coffee, err := st.Create(ctx, model.Draft{Description: "Coffee", Amount: "3.00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if coffee.ID == 0 || coffee.Amount != 300 {
		t.Fatalf("unexpected expense: %+v", coffee)
	}

	lunch, err := st.Create(ctx, model.Draft{Description: "Lunch", Amount: "12.50", Note: "with *team*"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]model.Expense{coffee, lunch}, items); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	updated, err := st.Update(ctx, coffee.ID, model.Draft{Description: "Coffee shop", Amount: "3.00"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "Coffee shop" || updated.ID != coffee.ID {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	// Update must not reorder: coffee was created first and stays first.
	items, err = st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != coffee.ID || items[0].Description != "Coffee shop" {
		t.Fatalf("unexpected order after update: %+v", items)
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.Create(ctx, model.Draft{Description: "  ", Amount: "nope"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["description"] == "" || verr.Fields["amount"] == "" {
		t.Fatalf("expected messages for description and amount, got %v", verr.Fields)
	}

	// Nothing was written.
	items, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %+v", items)
	}
}

func TestValidateRules(t *testing.T) {
	t.Parallel()

	_, _, _, ferr := Validate(model.Draft{Description: strings.Repeat("x", 141), Amount: "1"})
	if ferr["description"] == "" {
		t.Fatalf("expected too-long description error, got %v", ferr)
	}

	_, _, _, ferr = Validate(model.Draft{Description: "ok", Amount: "0"})
	if ferr["amount"] == "" {
		t.Fatalf("expected zero amount rejected, got %v", ferr)
	}

	desc, cents, note, ferr := Validate(model.Draft{Description: " Coffee ", Amount: "3.5", Note: " n "})
	if ferr != nil {
		t.Fatalf("unexpected errors: %v", ferr)
	}
	if desc != "Coffee" || cents != 350 || note != "n" {
		t.Fatalf("unexpected parse: %q %d %q", desc, cents, note)
	}
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	t.Parallel()

	// 140 two-byte characters is within the description limit.
	_, _, _, ferr := Validate(model.Draft{Description: strings.Repeat("é", 140), Amount: "1"})
	if ferr != nil {
		t.Fatalf("multi-byte description wrongly rejected: %v", ferr)
	}
	_, _, _, ferr = Validate(model.Draft{Description: strings.Repeat("é", 141), Amount: "1"})
	if ferr["description"] == "" {
		t.Fatalf("expected too-long description error, got %v", ferr)
	}

	_, _, _, ferr = Validate(model.Draft{Description: "ok", Amount: "1", Note: strings.Repeat("猫", 10_000)})
	if ferr != nil {
		t.Fatalf("multi-byte note wrongly rejected: %v", ferr)
	}
	_, _, _, ferr = Validate(model.Draft{Description: "ok", Amount: "1", Note: strings.Repeat("猫", 10_001)})
	if ferr["note"] == "" {
		t.Fatalf("expected too-long note error, got %v", ferr)
	}
}

func TestUpdateMissingRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.Update(ctx, 42, model.Draft{Description: "ghost", Amount: "1.00"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openTestStore(t)

	e, err := st.Create(ctx, model.Draft{Description: "Coffee", Amount: "3.00"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := st.Get(ctx, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Get, got %v", err)
	}
}
