package repository

import (
	"context"

	"github.com/faxmemaybe/backend/domain"
)

// MappingRepository persists the local-id to tracker-id association. Local
// ids are minted per submission and are never reused or updated; a tracker id
// appears in at most one live mapping.
type MappingRepository interface {
	Create(ctx context.Context, mapping *domain.Mapping) error
	GetByID(ctx context.Context, id string) (*domain.Mapping, error)
	GetByTodoistID(ctx context.Context, todoistID string) (*domain.Mapping, error)
	List(ctx context.Context) ([]domain.Mapping, error)
	// Delete removes the mapping for a local id. Removing an unknown id is a
	// no-op, not an error.
	Delete(ctx context.Context, id string) error
	// DeleteByTodoistID supports webhook-driven cleanup when the tracker side
	// initiates the deletion.
	DeleteByTodoistID(ctx context.Context, todoistID string) error
}
