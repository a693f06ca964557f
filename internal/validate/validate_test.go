package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/faxmemaybe/backend/domain"
)

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 13, 30, 0, 0, time.UTC)
}

func TestSubmissionRequiresTodoText(t *testing.T) {
	for _, todo := range []string{"", "   ", "\t\n"} {
		_, verr := Submission(domain.Submission{Todo: todo, Importance: 3}, Options{})
		if verr == nil {
			t.Fatalf("expected violation for todo %q", todo)
		}
		if verr.Reason != "TODO text is required" {
			t.Fatalf("unexpected reason %q", verr.Reason)
		}
	}
}

func TestSubmissionRejectsOverlongTodo(t *testing.T) {
	long := strings.Repeat("x", 65)
	if _, verr := Submission(domain.Submission{Todo: long, Importance: 3}, Options{}); verr == nil {
		t.Fatal("expected violation for 65-char todo")
	}
	ok := strings.Repeat("x", 64)
	if _, verr := Submission(domain.Submission{Todo: "  " + ok + "  ", Importance: 3}, Options{}); verr != nil {
		t.Fatalf("64 chars after trim should pass, got %v", verr)
	}
}

func TestSubmissionLimitsCountCharactersNotBytes(t *testing.T) {
	// 64 multi-byte characters are within the limit even though the byte
	// length is far over it.
	todo := strings.Repeat("ü", 64)
	if _, verr := Submission(domain.Submission{Todo: todo, Importance: 3}, Options{}); verr != nil {
		t.Fatalf("64 multi-byte chars should pass, got %v", verr)
	}
	if _, verr := Submission(domain.Submission{Todo: todo + "ü", Importance: 3}, Options{}); verr == nil {
		t.Fatal("expected violation for 65 multi-byte chars")
	}

	from := strings.Repeat("日", 20)
	if _, verr := Submission(domain.Submission{Todo: "milk", Importance: 3, From: from}, Options{}); verr != nil {
		t.Fatalf("20 multi-byte chars in from should pass, got %v", verr)
	}

	description := strings.Repeat("é", 500)
	if _, verr := Submission(domain.Submission{Todo: "milk", Importance: 3, Description: description}, Options{}); verr != nil {
		t.Fatalf("500 multi-byte chars in description should pass, got %v", verr)
	}
}

func TestSubmissionImportanceBounds(t *testing.T) {
	for _, imp := range []float64{0, -1, 6, 2.5, 100} {
		_, verr := Submission(domain.Submission{Todo: "milk", Importance: imp}, Options{})
		if verr == nil {
			t.Fatalf("expected violation for importance %v", imp)
		}
		if verr.Reason != "Importance must be between 1 and 5" {
			t.Fatalf("unexpected reason %q", verr.Reason)
		}
	}
	for imp := 1; imp <= 5; imp++ {
		draft, verr := Submission(domain.Submission{Todo: "milk", Importance: float64(imp)}, Options{})
		if verr != nil {
			t.Fatalf("importance %d should pass, got %v", imp, verr)
		}
		if draft.Importance != imp {
			t.Fatalf("expected importance %d, got %d", imp, draft.Importance)
		}
	}
}

func TestSubmissionFieldLimits(t *testing.T) {
	if _, verr := Submission(domain.Submission{
		Todo:       "milk",
		Importance: 3,
		From:       strings.Repeat("a", 21),
	}, Options{}); verr == nil || verr.Field != "from" {
		t.Fatalf("expected from violation, got %v", verr)
	}

	if _, verr := Submission(domain.Submission{
		Todo:        "milk",
		Importance:  3,
		Description: strings.Repeat("a", 501),
	}, Options{}); verr == nil || verr.Field != "description" {
		t.Fatalf("expected description violation, got %v", verr)
	}

	if _, verr := Submission(domain.Submission{
		Todo:       "milk",
		Importance: 3,
		Labels:     []string{"a", "b", "c", "d", "e", "f"},
	}, Options{}); verr == nil || verr.Field != "labels" {
		t.Fatalf("expected labels violation, got %v", verr)
	}
}

func TestSubmissionStrictDueDates(t *testing.T) {
	opts := Options{StrictDueDates: true, Now: fixedNow}

	if _, verr := Submission(domain.Submission{Todo: "milk", Importance: 3, DueDate: "next tuesday"}, opts); verr == nil {
		t.Fatal("expected format violation for natural-language date in strict mode")
	}
	if _, verr := Submission(domain.Submission{Todo: "milk", Importance: 3, DueDate: "2025-02-31"}, opts); verr == nil {
		t.Fatal("expected violation for impossible calendar date")
	}
	if _, verr := Submission(domain.Submission{Todo: "milk", Importance: 3, DueDate: "2020-01-01"}, opts); verr == nil || verr.Reason != "Due date cannot be in the past" {
		t.Fatalf("expected past-date violation, got %v", verr)
	}
	// Today at UTC midnight is not in the past.
	if _, verr := Submission(domain.Submission{Todo: "milk", Importance: 3, DueDate: "2025-06-15"}, opts); verr != nil {
		t.Fatalf("today should pass, got %v", verr)
	}
	if _, verr := Submission(domain.Submission{Todo: "milk", Importance: 3, DueDate: "2026-01-01"}, opts); verr != nil {
		t.Fatalf("future date should pass, got %v", verr)
	}
}

func TestSubmissionNaturalLanguageModeSkipsDateCheck(t *testing.T) {
	draft, verr := Submission(domain.Submission{Todo: "milk", Importance: 3, DueDate: "every other friday"}, Options{Now: fixedNow})
	if verr != nil {
		t.Fatalf("natural-language mode should forward raw string, got %v", verr)
	}
	if draft.DueDate != "every other friday" {
		t.Fatalf("expected raw due string, got %q", draft.DueDate)
	}
}

func TestSubmissionNormalizesFields(t *testing.T) {
	draft, verr := Submission(domain.Submission{
		Todo:        "  Buy milk  ",
		Description: " remember oat ",
		Importance:  4,
		From:        " Sam ",
		Source:      " web ",
	}, Options{})
	if verr != nil {
		t.Fatalf("unexpected violation: %v", verr)
	}
	if draft.Todo != "Buy milk" || draft.Description != "remember oat" || draft.From != "Sam" || draft.Source != "web" {
		t.Fatalf("fields not trimmed: %+v", draft)
	}
}
