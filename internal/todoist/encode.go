package todoist

import (
	"regexp"
	"strings"

	"github.com/faxmemaybe/backend/domain"
)

// Importance (1-5) maps onto Todoist's 4-step priority scale, where 4 is the
// most urgent. The top of the scale is capped: importance 4 and 5 both become
// priority 4, so the reverse mapping collapses them to 4. This round-trip is
// lossy on purpose, not a bug.
var importanceToPriority = map[int]int{
	1: 1,
	2: 2,
	3: 3,
	4: 4,
	5: 4,
}

var priorityToImportance = map[int]int{
	1: 1,
	2: 2,
	3: 3,
	4: 4,
}

// PriorityFromImportance converts the submission importance to a Todoist priority.
func PriorityFromImportance(importance int) int {
	if p, ok := importanceToPriority[importance]; ok {
		return p
	}
	return 1
}

// ImportanceFromPriority converts a Todoist priority back to an importance value.
func ImportanceFromPriority(priority int) int {
	if imp, ok := priorityToImportance[priority]; ok {
		return imp
	}
	return 1
}

var fromPrefix = regexp.MustCompile(`^\[From: ([^\]]+)\] `)

const (
	sourceDelimiter = "\n\n---\nSource: "
	sourceOnly      = "Source: "
)

// EncodeContent embeds the submitter label as a recognizable prefix on the
// task content. Todoist has no native submitter field.
func EncodeContent(todo, from string) string {
	if from == "" {
		return todo
	}
	return "[From: " + from + "] " + todo
}

// DecodeContent strips exactly one well-formed submitter prefix. Content
// without a matching prefix is returned unchanged with no submitter
// (fail open).
func DecodeContent(content string) (todo, from string) {
	m := fromPrefix.FindStringSubmatch(content)
	if m == nil {
		return content, ""
	}
	return content[len(m[0]):], m[1]
}

// EncodeDescription embeds the source tag as a delimited suffix, or as the
// entire description when no free-form description was supplied.
func EncodeDescription(description, source string) string {
	if source == "" {
		return description
	}
	if description == "" {
		return sourceOnly + source
	}
	return description + sourceDelimiter + source
}

// DecodeDescription recognizes both embedding shapes produced by
// EncodeDescription and extracts the source tag.
func DecodeDescription(description string) (desc, source string) {
	if idx := strings.LastIndex(description, sourceDelimiter); idx >= 0 && idx+len(sourceDelimiter) < len(description) {
		return description[:idx], description[idx+len(sourceDelimiter):]
	}
	if strings.HasPrefix(description, sourceOnly) {
		return "", strings.TrimPrefix(description, sourceOnly)
	}
	return description, ""
}

// TaskToTodo converts a tracker task into the unified read model, decoding
// the embedded submitter and source markers. When localID is empty the
// tracker id doubles as the exposed id.
func TaskToTodo(task *Task, localID string) *domain.Todo {
	content, from := DecodeContent(task.Content)
	description, source := DecodeDescription(task.Description)

	id := localID
	if id == "" {
		id = task.ID
	}

	todo := &domain.Todo{
		ID:          id,
		TodoistID:   task.ID,
		Content:     content,
		Description: description,
		Importance:  ImportanceFromPriority(task.Priority),
		Labels:      task.Labels,
		From:        from,
		Source:      source,
		Completed:   task.IsCompleted,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		URL:         task.URL,
	}
	if todo.Labels == nil {
		todo.Labels = []string{}
	}
	if task.Due != nil {
		todo.DueDate = task.Due.Date
		todo.DueString = task.Due.String
	}
	return todo
}
