package renderer

import (
	"net/url"
	"strings"
	"testing"

	"github.com/faxmemaybe/backend/domain"
)

func TestTicketURLEncodesAllFields(t *testing.T) {
	draft := &domain.NewTodo{
		Todo:        "Buy milk & cookies",
		Description: "2% only",
		Importance:  4,
		DueDate:     "2026-01-02",
		From:        "Sam Öberg",
		Labels:      []string{"errand", "food"},
		Source:      "web",
	}

	raw, err := TicketURL("http://localhost:5173/ticket", draft, "local-1")
	if err != nil {
		t.Fatalf("ticket url: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse built url: %v", err)
	}
	q := u.Query()
	if q.Get("id") != "local-1" {
		t.Fatalf("id param missing: %s", raw)
	}
	if q.Get("todo") != "Buy milk & cookies" {
		t.Fatalf("todo param not round-tripped: %q", q.Get("todo"))
	}
	if q.Get("from") != "Sam Öberg" {
		t.Fatalf("from param not round-tripped: %q", q.Get("from"))
	}
	if q.Get("importance") != "4" || q.Get("dueDate") != "2026-01-02" {
		t.Fatalf("scalar params wrong: %s", raw)
	}
	if q.Get("labels") != "errand,food" {
		t.Fatalf("labels param wrong: %q", q.Get("labels"))
	}
	// Raw reserved characters must not leak into the query string.
	if strings.Contains(u.RawQuery, " ") || strings.Contains(u.RawQuery, "&cookies") {
		t.Fatalf("query not percent-encoded: %s", u.RawQuery)
	}
}

func TestTicketURLOmitsEmptyOptionalFields(t *testing.T) {
	raw, err := TicketURL("http://localhost:5173/ticket", &domain.NewTodo{Todo: "x", Importance: 1}, "id-1")
	if err != nil {
		t.Fatalf("ticket url: %v", err)
	}
	u, _ := url.Parse(raw)
	q := u.Query()
	for _, param := range []string{"description", "from", "dueDate", "labels", "source"} {
		if q.Has(param) {
			t.Fatalf("expected %s to be omitted, got %s", param, raw)
		}
	}
}
