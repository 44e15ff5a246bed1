package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"tally-web/internal/live"
	"tally-web/internal/model"
	"tally-web/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client, *store.Store) {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "tally.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	srv, err := NewServer(ServerConfig{Store: st})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(srv.Close)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return ts, &http.Client{Jar: jar}, st
}

func get(t *testing.T, c *http.Client, u string) string {
	t.Helper()
	resp, err := c.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", u, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	return string(b)
}

func post(t *testing.T, c *http.Client, u string, form url.Values) {
	t.Helper()
	resp, err := c.PostForm(u, form)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("POST %s: status %d", u, resp.StatusCode)
	}
}

// elementClass pulls the class attribute of the element with the given id
// out of rendered HTML. Good enough for asserting hidden/visible.
func elementClass(t *testing.T, html, id string) string {
	t.Helper()
	marker := `id="` + id + `"`
	i := strings.Index(html, marker)
	if i < 0 {
		t.Fatalf("element %s not in page", id)
	}
	rest := html[i:]
	j := strings.Index(rest, `class="`)
	if j < 0 || j > 200 {
		t.Fatalf("no class attribute near %s", id)
	}
	rest = rest[j+len(`class="`):]
	return rest[:strings.Index(rest, `"`)]
}

func TestPageShowsSeededExpenses(t *testing.T) {
	t.Parallel()
	ts, c, st := newTestServer(t)
	coffee, err := st.Create(context.Background(), model.Draft{Description: "Coffee", Amount: "3.00", Note: "with **oat** milk"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := get(t, c, ts.URL+"/expenses")
	if !strings.Contains(body, "Coffee") || !strings.Contains(body, "3.00") {
		t.Fatalf("expense missing from page:\n%s", body)
	}
	if !strings.Contains(body, "<strong>oat</strong>") {
		t.Fatal("note not rendered as markdown")
	}

	rowID := fmt.Sprintf("row-%d", coffee.ID)
	formID := fmt.Sprintf("form-%d", coffee.ID)
	if cls := elementClass(t, body, rowID); strings.Contains(cls, "hidden") {
		t.Fatalf("row should start visible, class=%q", cls)
	}
	if cls := elementClass(t, body, formID); !strings.Contains(cls, "hidden") {
		t.Fatalf("form should start hidden, class=%q", cls)
	}
	if cls := elementClass(t, body, "form-new"); !strings.Contains(cls, "hidden") {
		t.Fatalf("create form should start hidden, class=%q", cls)
	}
}

func TestOpenSwapsRowForForm(t *testing.T) {
	t.Parallel()
	ts, c, st := newTestServer(t)
	coffee, err := st.Create(context.Background(), model.Draft{Description: "Coffee", Amount: "3.00"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	get(t, c, ts.URL+"/expenses") // establish the session cookie
	post(t, c, fmt.Sprintf("%s/expenses/open?id=%d", ts.URL, coffee.ID), nil)

	body := get(t, c, ts.URL+"/expenses")
	rowID := fmt.Sprintf("row-%d", coffee.ID)
	formID := fmt.Sprintf("form-%d", coffee.ID)
	if cls := elementClass(t, body, rowID); !strings.Contains(cls, "hidden") {
		t.Fatalf("row should be hidden while its form is open, class=%q", cls)
	}
	if cls := elementClass(t, body, formID); strings.Contains(cls, "hidden") {
		t.Fatalf("form should be visible, class=%q", cls)
	}
}

func TestSubmitUpdatesAndCloses(t *testing.T) {
	t.Parallel()
	ts, c, st := newTestServer(t)
	coffee, err := st.Create(context.Background(), model.Draft{Description: "Coffee", Amount: "3.00"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	get(t, c, ts.URL+"/expenses")
	post(t, c, fmt.Sprintf("%s/expenses/open?id=%d", ts.URL, coffee.ID), nil)
	post(t, c, fmt.Sprintf("%s/expenses/submit?form=%d", ts.URL, coffee.ID), url.Values{
		"description": {"Coffee shop"},
		"amount":      {"3.00"},
		"note":        {""},
	})

	body := get(t, c, ts.URL+"/expenses")
	if !strings.Contains(body, "Coffee shop") {
		t.Fatal("update not visible on page")
	}
	rowID := fmt.Sprintf("row-%d", coffee.ID)
	if cls := elementClass(t, body, rowID); strings.Contains(cls, "hidden") {
		t.Fatalf("row should be restored after commit, class=%q", cls)
	}

	got, err := st.Get(context.Background(), coffee.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Coffee shop" {
		t.Fatalf("store not updated: %+v", got)
	}
}

func TestSubmitValidationErrorStaysOpen(t *testing.T) {
	t.Parallel()
	ts, c, st := newTestServer(t)
	coffee, err := st.Create(context.Background(), model.Draft{Description: "Coffee", Amount: "3.00"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	get(t, c, ts.URL+"/expenses")
	post(t, c, fmt.Sprintf("%s/expenses/open?id=%d", ts.URL, coffee.ID), nil)
	post(t, c, fmt.Sprintf("%s/expenses/submit?form=%d", ts.URL, coffee.ID), url.Values{
		"description": {"Coffee"},
		"amount":      {"not a number"},
	})

	body := get(t, c, ts.URL+"/expenses")
	formID := fmt.Sprintf("form-%d", coffee.ID)
	if cls := elementClass(t, body, formID); strings.Contains(cls, "hidden") {
		t.Fatalf("form must stay open on validation failure, class=%q", cls)
	}
	if !strings.Contains(body, "must be a number") {
		t.Fatal("validation message missing from page")
	}
}

func TestCreateViaWeb(t *testing.T) {
	t.Parallel()
	ts, c, st := newTestServer(t)

	get(t, c, ts.URL+"/expenses")
	post(t, c, ts.URL+"/expenses/new", nil)
	post(t, c, ts.URL+"/expenses/submit?form=new", url.Values{
		"description": {"Tea"},
		"amount":      {"2.00"},
	})

	body := get(t, c, ts.URL+"/expenses")
	if !strings.Contains(body, "Tea") {
		t.Fatal("created expense missing from page")
	}
	items, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Description != "Tea" || items[0].Amount != 200 {
		t.Fatalf("unexpected store contents: %+v", items)
	}
}

func TestCloseRejectsNewSessions(t *testing.T) {
	t.Parallel()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "tally.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	srv, err := NewServer(ServerConfig{Store: st})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	srv.Close()
	srv.Close() // idempotent

	resp, err := http.Get(ts.URL + "/expenses")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected closed server to reject the session, got %d", resp.StatusCode)
	}
}

func TestClaimStreamSupersedes(t *testing.T) {
	t.Parallel()

	ws := &webSession{}
	first := ws.claimStream()
	select {
	case <-first:
		t.Fatal("first claim must stay live")
	default:
	}

	second := ws.claimStream()
	select {
	case <-first:
	default:
		t.Fatal("second claim must release the first reader")
	}
	select {
	case <-second:
		t.Fatal("second claim must stay live")
	default:
	}
}

func TestParseFormID(t *testing.T) {
	t.Parallel()

	if id, err := parseFormID("new"); err != nil || id != live.FormCreate {
		t.Fatalf("parseFormID(new) = %v, %v", id, err)
	}
	if id, err := parseFormID("7"); err != nil || id != live.FormID(7) {
		t.Fatalf("parseFormID(7) = %v, %v", id, err)
	}
	for _, bad := range []string{"", "0", "-3", "abc"} {
		if _, err := parseFormID(bad); err == nil {
			t.Fatalf("parseFormID(%q): expected error", bad)
		}
	}
}
