// Package validate checks raw TODO submissions against the field constraints
// enforced before any external call is made. It is pure: no I/O, no clock
// access beyond the injectable Now.
package validate

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/faxmemaybe/backend/domain"
)

const (
	maxTodoLen        = 64
	maxFromLen        = 20
	maxDescriptionLen = 500
	maxLabels         = 5
)

var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Error is a single field violation. Validation reports the first failing
// rule only, matching the submission form's one-error-at-a-time UX.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// Options control deployment-dependent rules.
type Options struct {
	// StrictDueDates requires YYYY-MM-DD due dates that are not in the past.
	// When false, the raw string is forwarded to the tracker as a
	// natural-language due expression.
	StrictDueDates bool
	// Now supplies "today" for the past-date check. Defaults to time.Now.
	Now func() time.Time
}

// Submission validates and normalizes a raw submission. It either returns a
// fully normalized NewTodo or the first violated rule; it never partially
// applies defaults. Importance is required and is never defaulted.
func Submission(sub domain.Submission, opts Options) (*domain.NewTodo, *Error) {
	todo := strings.TrimSpace(sub.Todo)
	if todo == "" {
		return nil, &Error{Field: "todo", Reason: "TODO text is required"}
	}
	if utf8.RuneCountInString(todo) > maxTodoLen {
		return nil, &Error{Field: "todo", Reason: "TODO text must be 64 characters or less"}
	}

	if sub.Importance != math.Trunc(sub.Importance) || sub.Importance < 1 || sub.Importance > 5 {
		return nil, &Error{Field: "importance", Reason: "Importance must be between 1 and 5"}
	}

	from := strings.TrimSpace(sub.From)
	if utf8.RuneCountInString(from) > maxFromLen {
		return nil, &Error{Field: "from", Reason: "From must be 20 characters or less"}
	}

	description := strings.TrimSpace(sub.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return nil, &Error{Field: "description", Reason: "Description must be 500 characters or less"}
	}

	if len(sub.Labels) > maxLabels {
		return nil, &Error{Field: "labels", Reason: "A maximum of 5 labels is allowed"}
	}

	dueDate := strings.TrimSpace(sub.DueDate)
	if dueDate != "" && opts.StrictDueDates {
		if verr := checkStrictDueDate(dueDate, opts.now()); verr != nil {
			return nil, verr
		}
	}

	return &domain.NewTodo{
		Todo:        todo,
		Description: description,
		Importance:  int(sub.Importance),
		DueDate:     dueDate,
		From:        from,
		Labels:      sub.Labels,
		Source:      strings.TrimSpace(sub.Source),
	}, nil
}

func checkStrictDueDate(dueDate string, now time.Time) *Error {
	if !dueDatePattern.MatchString(dueDate) {
		return &Error{Field: "dueDate", Reason: "Due date must be in YYYY-MM-DD format"}
	}
	parsed, err := time.ParseInLocation("2006-01-02", dueDate, time.UTC)
	if err != nil {
		return &Error{Field: "dueDate", Reason: "Due date is not a valid calendar date"}
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if parsed.Before(today) {
		return &Error{Field: "dueDate", Reason: "Due date cannot be in the past"}
	}
	return nil
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
