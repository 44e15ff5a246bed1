package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"tally-web/internal/model"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		t.Fatalf("tally %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestAddListDelete(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "tally.sqlite")

	runCLI(t, "--db", db, "add", "-d", "Coffee", "-a", "3.00", "-n", "morning")
	runCLI(t, "--db", db, "add", "-d", "Lunch", "-a", "12.50")

	out := runCLI(t, "--db", db, "list", "--json")
	var items []model.Expense
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("bad json output: %v\n%s", err, out)
	}
	if len(items) != 2 || items[0].Description != "Coffee" || items[1].Amount != 1250 {
		t.Fatalf("unexpected items: %+v", items)
	}

	out = runCLI(t, "--db", db, "list")
	if !strings.Contains(out, "Coffee") || !strings.Contains(out, "12.50") {
		t.Fatalf("table output missing rows:\n%s", out)
	}

	runCLI(t, "--db", db, "delete", fmt.Sprintf("%d", items[0].ID))
	out = runCLI(t, "--db", db, "list", "--json")
	items = nil
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("bad json output: %v\n%s", err, out)
	}
	if len(items) != 1 || items[0].Description != "Lunch" {
		t.Fatalf("unexpected items after delete: %+v", items)
	}
}

func TestAddRejectsInvalidAmount(t *testing.T) {
	t.Parallel()
	db := filepath.Join(t.TempDir(), "tally.sqlite")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--db", db, "add", "-d", "Coffee", "-a", "lots"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected validation error")
	}
}
