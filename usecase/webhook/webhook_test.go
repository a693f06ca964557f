package webhook

import (
	"context"
	"testing"

	"github.com/faxmemaybe/backend/domain"
	"github.com/faxmemaybe/backend/internal/todoist"
)

type fakeMappings struct {
	rows    map[string]domain.Mapping
	deletes int
}

func newFakeMappings() *fakeMappings {
	return &fakeMappings{rows: map[string]domain.Mapping{}}
}

func (f *fakeMappings) Create(ctx context.Context, m *domain.Mapping) error {
	f.rows[m.ID] = *m
	return nil
}

func (f *fakeMappings) GetByID(ctx context.Context, id string) (*domain.Mapping, error) {
	m, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrMappingNotFound
	}
	return &m, nil
}

func (f *fakeMappings) GetByTodoistID(ctx context.Context, todoistID string) (*domain.Mapping, error) {
	for _, m := range f.rows {
		if m.TodoistID == todoistID {
			return &m, nil
		}
	}
	return nil, domain.ErrMappingNotFound
}

func (f *fakeMappings) List(ctx context.Context) ([]domain.Mapping, error) {
	return nil, nil
}

func (f *fakeMappings) Delete(ctx context.Context, id string) error {
	delete(f.rows, id)
	f.deletes++
	return nil
}

func (f *fakeMappings) DeleteByTodoistID(ctx context.Context, todoistID string) error {
	for id, m := range f.rows {
		if m.TodoistID == todoistID {
			delete(f.rows, id)
		}
	}
	f.deletes++
	return nil
}

func TestItemDeletedRemovesMapping(t *testing.T) {
	mappings := newFakeMappings()
	mappings.Create(context.Background(), &domain.Mapping{ID: "local-1", TodoistID: "42"})
	uc := New(mappings, nil)

	err := uc.HandleEvent(context.Background(), &todoist.WebhookEvent{
		EventName: todoist.EventItemDeleted,
		EventData: todoist.WebhookItem{ID: "42"},
	})
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(mappings.rows) != 0 {
		t.Fatalf("expected mapping removed, got %v", mappings.rows)
	}
}

func TestCompletionEventsDoNotMutate(t *testing.T) {
	mappings := newFakeMappings()
	mappings.Create(context.Background(), &domain.Mapping{ID: "local-1", TodoistID: "42"})
	uc := New(mappings, nil)

	for _, name := range []string{todoist.EventItemCompleted, todoist.EventItemUncompleted} {
		err := uc.HandleEvent(context.Background(), &todoist.WebhookEvent{
			EventName: name,
			EventData: todoist.WebhookItem{ID: "42"},
		})
		if err != nil {
			t.Fatalf("handle %s: %v", name, err)
		}
	}
	if len(mappings.rows) != 1 || mappings.deletes != 0 {
		t.Fatalf("completion events must not mutate state: rows=%v deletes=%d", mappings.rows, mappings.deletes)
	}
}

func TestUnrecognizedEventIsAcknowledged(t *testing.T) {
	mappings := newFakeMappings()
	uc := New(mappings, nil)

	err := uc.HandleEvent(context.Background(), &todoist.WebhookEvent{
		EventName: "note:added",
		EventData: todoist.WebhookItem{ID: "42"},
	})
	if err != nil {
		t.Fatalf("unrecognized events must not be errors, got %v", err)
	}
	if mappings.deletes != 0 {
		t.Fatal("unrecognized events must not mutate state")
	}
}
