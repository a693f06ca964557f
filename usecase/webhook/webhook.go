// Package webhook reconciles local mapping state with tracker-initiated
// events. Signature verification happens at the transport layer before any
// event reaches this code.
package webhook

import (
	"context"

	"go.uber.org/zap"

	"github.com/faxmemaybe/backend/internal/todoist"
	"github.com/faxmemaybe/backend/repository"
)

type UseCase struct {
	mappings repository.MappingRepository
	logger   *zap.Logger
}

func New(mappings repository.MappingRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		mappings: mappings,
		logger:   logger,
	}
}

// HandleEvent dispatches one tracker event. Only task deletion mutates local
// state; completion state is always read through from the tracker, so
// completed/uncompleted events are logged and acknowledged. Unrecognized
// event names are never errors: the sender retries on failure and local
// processing problems must not trigger that storm.
func (uc *UseCase) HandleEvent(ctx context.Context, event *todoist.WebhookEvent) error {
	log := uc.logger.With(
		zap.String("event", event.EventName),
		zap.String("todoist_id", event.EventData.ID))

	switch event.EventName {
	case todoist.EventItemDeleted:
		if err := uc.mappings.DeleteByTodoistID(ctx, event.EventData.ID); err != nil {
			log.Error("failed to remove mapping for deleted task", zap.Error(err))
			return err
		}
		log.Info("mapping removed for remotely deleted task")
		return nil

	case todoist.EventItemCompleted:
		log.Info("task completed upstream")
		return nil

	case todoist.EventItemUncompleted:
		log.Info("task reopened upstream")
		return nil

	default:
		log.Info("ignoring unrecognized webhook event")
		return nil
	}
}
