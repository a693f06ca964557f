package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission is the raw TODO payload as received on the wire, before
// validation or normalization. Importance stays a float here so the
// validator can reject non-integer values instead of silently truncating.
type Submission struct {
	Todo        string   `json:"todo"`
	Description string   `json:"description,omitempty"`
	Importance  float64  `json:"importance"`
	DueDate     string   `json:"dueDate,omitempty"`
	From        string   `json:"from,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// NewTodo is a validated, normalized submission ready for the pipeline.
type NewTodo struct {
	Todo        string
	Description string
	Importance  int
	DueDate     string
	From        string
	Labels      []string
	Source      string
}

// Todo is the unified read model: tracker task fields joined with the
// local identifier and the decoded submitter/source markers.
type Todo struct {
	ID          string   `json:"id"`
	TodoistID   string   `json:"todoistId"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Importance  int      `json:"importance"`
	Labels      []string `json:"labels"`
	DueDate     string   `json:"dueDate,omitempty"`
	DueString   string   `json:"dueString,omitempty"`
	From        string   `json:"from,omitempty"`
	Source      string   `json:"source,omitempty"`
	Completed   bool     `json:"completed"`
	CompletedAt string   `json:"completedAt,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	URL         string   `json:"url"`
}

// Mapping associates a locally minted identifier with the tracker's task id.
// The local id is what ends up on printed tickets, so it must survive any
// change to the tracker's id format.
type Mapping struct {
	ID        string    `json:"id"`
	TodoistID string    `json:"todoist_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Label mirrors the tracker's label resource.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// StatsUnavailable marks a completed count that could not be fetched.
const StatsUnavailable = -1

// Stats aggregates the pending and completed counters for the dashboard.
type Stats struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// NewLocalID mints an opaque 128-bit random identifier. Ids are drawn, never
// sequenced, so concurrent submissions need no coordination.
func NewLocalID() string {
	return uuid.NewString()
}
