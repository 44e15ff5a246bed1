package model

import "testing"

func TestParseAmount(t *testing.T) {
	t.Parallel()

	good := map[string]int64{
		"3":      300,
		"3.5":    350,
		"3.50":   350,
		"0.01":   1,
		".50":    50,
		" 12.00": 1200,
		"0":      0,
	}
	for in, want := range good {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", in, got, want)
		}
	}

	bad := []string{"", "abc", "3.456", "3.", "1,50", "$3", "-", "-1.50", "+3"}
	for _, in := range bad {
		if _, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q): expected error", in)
		}
	}
}

func TestParseAmountRejectsOverflow(t *testing.T) {
	t.Parallel()

	// Values whose cents would wrap int64 must be rejected, not wrapped
	// into the accepted range.
	huge := []string{
		"184467440737095517",
		"92233720368547758.07",
		"999999999999999999999",
	}
	for _, in := range huge {
		if got, err := ParseAmount(in); err == nil {
			t.Fatalf("ParseAmount(%q) = %d, expected error", in, got)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	cases := map[int64]string{
		300:  "3.00",
		350:  "3.50",
		1:    "0.01",
		0:    "0.00",
		-125: "-1.25",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Fatalf("FormatAmount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestDraftOfRoundTrips(t *testing.T) {
	t.Parallel()

	e := Expense{ID: 7, Description: "Coffee", Amount: 300, Note: "oat milk"}
	d := DraftOf(e)
	if d.Description != "Coffee" || d.Amount != "3.00" || d.Note != "oat milk" {
		t.Fatalf("unexpected draft: %+v", d)
	}
}
