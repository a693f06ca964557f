package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faxmemaybe/backend/domain"
	"github.com/faxmemaybe/backend/repository"
)

type mappingRepository struct {
	pool *pgxpool.Pool
}

// NewMappingRepository returns a Postgres-backed implementation of MappingRepository.
func NewMappingRepository(pool *pgxpool.Pool) repository.MappingRepository {
	return &mappingRepository{pool: pool}
}

func (r *mappingRepository) Create(ctx context.Context, mapping *domain.Mapping) error {
	if mapping == nil || mapping.ID == "" || mapping.TodoistID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO todo_mappings (id, todoist_id)
	VALUES ($1, $2)
	RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query, mapping.ID, mapping.TodoistID).Scan(&mapping.CreatedAt)
}

func (r *mappingRepository) GetByID(ctx context.Context, id string) (*domain.Mapping, error) {
	const query = `
	SELECT id, todoist_id, created_at
	FROM todo_mappings
	WHERE id = $1
	`
	return scanMapping(r.pool.QueryRow(ctx, query, id))
}

func (r *mappingRepository) GetByTodoistID(ctx context.Context, todoistID string) (*domain.Mapping, error) {
	const query = `
	SELECT id, todoist_id, created_at
	FROM todo_mappings
	WHERE todoist_id = $1
	`
	return scanMapping(r.pool.QueryRow(ctx, query, todoistID))
}

func (r *mappingRepository) List(ctx context.Context) ([]domain.Mapping, error) {
	const query = `
	SELECT id, todoist_id, created_at
	FROM todo_mappings
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []domain.Mapping
	for rows.Next() {
		var m domain.Mapping
		if err := rows.Scan(&m.ID, &m.TodoistID, &m.CreatedAt); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (r *mappingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM todo_mappings WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *mappingRepository) DeleteByTodoistID(ctx context.Context, todoistID string) error {
	const query = `DELETE FROM todo_mappings WHERE todoist_id = $1`
	_, err := r.pool.Exec(ctx, query, todoistID)
	return err
}

func scanMapping(row pgx.Row) (*domain.Mapping, error) {
	var m domain.Mapping
	if err := row.Scan(&m.ID, &m.TodoistID, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMappingNotFound
		}
		return nil, err
	}
	return &m, nil
}
