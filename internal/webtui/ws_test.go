package webtui

import "testing"

func TestParseControl(t *testing.T) {
	t.Parallel()

	cols, rows, ok := parseControl([]byte(`{"resize":{"cols":132,"rows":43}}`))
	if !ok || cols != 132 || rows != 43 {
		t.Fatalf("parseControl = %d, %d, %v", cols, rows, ok)
	}

	bad := []string{
		``,
		`not json`,
		`{}`,
		`{"resize":{}}`,
		`{"resize":{"cols":0,"rows":40}}`,
		`{"resize":{"cols":80,"rows":-1}}`,
	}
	for _, in := range bad {
		if _, _, ok := parseControl([]byte(in)); ok {
			t.Fatalf("parseControl(%q): expected rejection", in)
		}
	}
}
