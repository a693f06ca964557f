package usecase

import (
	"context"

	"github.com/faxmemaybe/backend/domain"
	"github.com/faxmemaybe/backend/internal/todoist"
)

// Tracker abstracts the external task tracker so pipeline use cases can be
// exercised without network access.
type Tracker interface {
	CreateTask(ctx context.Context, draft *domain.NewTodo) (*todoist.Task, error)
	// GetTask returns (nil, nil) for tasks that no longer exist upstream.
	GetTask(ctx context.Context, todoistID string) (*todoist.Task, error)
	GetTasks(ctx context.Context) ([]todoist.Task, error)
	// Complete/Reopen/Delete return false when the task could not be acted on
	// remotely; callers treat false as reportable but non-fatal.
	CompleteTask(ctx context.Context, todoistID string) bool
	ReopenTask(ctx context.Context, todoistID string) bool
	DeleteTask(ctx context.Context, todoistID string) bool
	GetLabels(ctx context.Context) []domain.Label
	GetProductivityStats(ctx context.Context) *todoist.ProductivityStats
}

// Renderer produces a printable ticket image for a submission.
type Renderer interface {
	Render(ctx context.Context, draft *domain.NewTodo, localID string) ([]byte, error)
}

// ArtifactStore durably stores rendered tickets under deterministic keys.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// PrintQueue enqueues a print job referencing a stored artifact.
type PrintQueue interface {
	Enqueue(ctx context.Context, artifactKey, todoID string) error
}

// DispatchBuffer records failed print dispatches for background retry.
type DispatchBuffer interface {
	Buffer(ctx context.Context, todoID, artifactKey string) error
}
