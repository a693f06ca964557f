// Package todo orchestrates the submission-to-fulfillment pipeline:
// validation, tracker task creation, id mapping, ticket rendering, artifact
// storage, and print dispatch. Stages run sequentially within one submission
// because each stage's output feeds the next; there is no rollback across
// stages.
package todo

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/faxmemaybe/backend/domain"
	"github.com/faxmemaybe/backend/internal/artifact"
	"github.com/faxmemaybe/backend/internal/todoist"
	"github.com/faxmemaybe/backend/internal/validate"
	"github.com/faxmemaybe/backend/repository"
	"github.com/faxmemaybe/backend/usecase"
)

type UseCase struct {
	mappings  repository.MappingRepository
	tracker   usecase.Tracker
	renderer  usecase.Renderer
	artifacts usecase.ArtifactStore
	printer   usecase.PrintQueue
	retries   usecase.DispatchBuffer
	strict    bool
	now       func() time.Time
	logger    *zap.Logger
}

// Config carries the pipeline collaborators.
type Config struct {
	Mappings       repository.MappingRepository
	Tracker        usecase.Tracker
	Renderer       usecase.Renderer
	Artifacts      usecase.ArtifactStore
	Printer        usecase.PrintQueue
	DispatchBuffer usecase.DispatchBuffer
	StrictDueDates bool
}

func New(cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		mappings:  cfg.Mappings,
		tracker:   cfg.Tracker,
		renderer:  cfg.Renderer,
		artifacts: cfg.Artifacts,
		printer:   cfg.Printer,
		retries:   cfg.DispatchBuffer,
		strict:    cfg.StrictDueDates,
		now:       time.Now,
		logger:    logger,
	}
}

// Submit runs the full pipeline for one submission. Validation failures
// short-circuit before any external call. Later-stage failures are returned
// to the caller without compensating for earlier stages: a render failure
// leaves the tracker task and mapping in place, a dispatch failure leaves
// the stored artifact in place for re-dispatch.
func (uc *UseCase) Submit(ctx context.Context, sub domain.Submission) (*domain.Todo, error) {
	draft, verr := validate.Submission(sub, validate.Options{StrictDueDates: uc.strict, Now: uc.now})
	if verr != nil {
		return nil, domain.WrapError(domain.ErrCodeValidation, verr.Reason, verr)
	}

	task, err := uc.tracker.CreateTask(ctx, draft)
	if err != nil {
		return nil, err
	}

	localID := domain.NewLocalID()
	if err := uc.mappings.Create(ctx, &domain.Mapping{ID: localID, TodoistID: task.ID}); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to store id mapping", err)
	}

	log := uc.logger.With(zap.String("todo_id", localID), zap.String("todoist_id", task.ID))
	log.Info("todo accepted", zap.Int("importance", draft.Importance))

	image, err := uc.renderer.Render(ctx, draft, localID)
	if err != nil {
		log.Error("ticket render failed, tracker task kept", zap.Error(err))
		return nil, err
	}

	key := artifact.TicketKey(localID)
	if err := uc.artifacts.Put(ctx, key, image, "image/png"); err != nil {
		log.Error("artifact store failed", zap.Error(err))
		return nil, err
	}

	if err := uc.printer.Enqueue(ctx, key, localID); err != nil {
		log.Error("print dispatch failed, artifact kept", zap.Error(err))
		uc.bufferDispatch(ctx, localID, key, log)
		return nil, err
	}

	return todoist.TaskToTodo(task, localID), nil
}

// List returns all active tracker tasks joined with their local mappings.
func (uc *UseCase) List(ctx context.Context) ([]domain.Todo, error) {
	tasks, err := uc.tracker.GetTasks(ctx)
	if err != nil {
		return nil, err
	}

	localByTodoist := map[string]string{}
	if mappings, err := uc.mappings.List(ctx); err != nil {
		uc.logger.Warn("failed to load mappings for list", zap.Error(err))
	} else {
		for _, m := range mappings {
			localByTodoist[m.TodoistID] = m.ID
		}
	}

	todos := make([]domain.Todo, 0, len(tasks))
	for i := range tasks {
		todos = append(todos, *todoist.TaskToTodo(&tasks[i], localByTodoist[tasks[i].ID]))
	}
	return todos, nil
}

// Get resolves a local id to its tracker task.
func (uc *UseCase) Get(ctx context.Context, localID string) (*domain.Todo, error) {
	mapping, err := uc.resolveMapping(ctx, localID)
	if err != nil {
		return nil, err
	}

	task, err := uc.tracker.GetTask(ctx, mapping.TodoistID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTodoNotFound
	}
	return todoist.TaskToTodo(task, localID), nil
}

// Count returns the number of pending tasks.
func (uc *UseCase) Count(ctx context.Context) (int, error) {
	tasks, err := uc.tracker.GetTasks(ctx)
	if err != nil {
		return 0, err
	}
	return len(tasks), nil
}

// Stats aggregates the pending and completed counters. The two reads hit
// unrelated tracker endpoints, so they run concurrently. An unavailable
// completed count degrades to StatsUnavailable instead of failing the call.
func (uc *UseCase) Stats(ctx context.Context) (*domain.Stats, error) {
	var (
		tasks []todoist.Task
		stats *todoist.ProductivityStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = uc.tracker.GetTasks(gctx)
		return err
	})
	g.Go(func() error {
		stats = uc.tracker.GetProductivityStats(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.Stats{Pending: len(tasks), Completed: domain.StatsUnavailable}
	if stats != nil {
		result.Completed = stats.CompletedCount
	}
	return result, nil
}

// Complete marks the mapped task complete. False means the task was already
// gone upstream.
func (uc *UseCase) Complete(ctx context.Context, localID string) (bool, error) {
	mapping, err := uc.resolveMapping(ctx, localID)
	if err != nil {
		return false, err
	}
	return uc.tracker.CompleteTask(ctx, mapping.TodoistID), nil
}

// Reopen reopens the mapped task.
func (uc *UseCase) Reopen(ctx context.Context, localID string) (bool, error) {
	mapping, err := uc.resolveMapping(ctx, localID)
	if err != nil {
		return false, err
	}
	return uc.tracker.ReopenTask(ctx, mapping.TodoistID), nil
}

// Delete deletes the tracker task and drops the local mapping. The mapping
// goes away even if the remote delete reports the task already gone.
func (uc *UseCase) Delete(ctx context.Context, localID string) (bool, error) {
	mapping, err := uc.resolveMapping(ctx, localID)
	if err != nil {
		return false, err
	}

	deleted := uc.tracker.DeleteTask(ctx, mapping.TodoistID)
	if err := uc.mappings.Delete(ctx, localID); err != nil {
		uc.logger.Error("failed to remove mapping", zap.String("todo_id", localID), zap.Error(err))
		return deleted, err
	}
	return deleted, nil
}

// Labels lists the tracker's labels; advisory only.
func (uc *UseCase) Labels(ctx context.Context) []domain.Label {
	return uc.tracker.GetLabels(ctx)
}

// resolveMapping looks up the local id. Only a missing row becomes a 404;
// a mapping-store outage stays an internal error.
func (uc *UseCase) resolveMapping(ctx context.Context, localID string) (*domain.Mapping, error) {
	mapping, err := uc.mappings.GetByID(ctx, localID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}
	return mapping, nil
}

func (uc *UseCase) bufferDispatch(ctx context.Context, localID, key string, log *zap.Logger) {
	if uc.retries == nil {
		return
	}
	if err := uc.retries.Buffer(ctx, localID, key); err != nil {
		log.Error("failed to buffer dispatch for retry", zap.Error(err))
		return
	}
	log.Warn("print dispatch buffered for retry")
}
