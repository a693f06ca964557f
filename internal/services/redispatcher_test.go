package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/faxmemaybe/backend/internal/infrastructure/buffer"
)

type fakeQueue struct {
	err      error
	enqueued []string
}

func (f *fakeQueue) Enqueue(ctx context.Context, artifactKey, todoID string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, artifactKey)
	return nil
}

func newTestRedispatcher(t *testing.T, queue *fakeQueue, maxRetries int) (*Redispatcher, *buffer.Store) {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "dispatch.db"), "dispatch")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewRedispatcher(store, queue, nil, SweepConfig{MaxRetries: maxRetries}), store
}

func TestSweepDrainsBufferedJobs(t *testing.T) {
	queue := &fakeQueue{}
	rd, store := newTestRedispatcher(t, queue, 3)

	if err := rd.Buffer(context.Background(), "id-1", "todo-tickets/todo-id-1.png"); err != nil {
		t.Fatalf("buffer: %v", err)
	}
	if err := rd.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if len(queue.enqueued) != 1 || queue.enqueued[0] != "todo-tickets/todo-id-1.png" {
		t.Fatalf("expected one redispatch, got %v", queue.enqueued)
	}
	size, _ := store.Size()
	if size != 0 {
		t.Fatalf("expected drained buffer, %d jobs left", size)
	}
}

func TestSweepKeepsFailingJobsUntilRetryBudget(t *testing.T) {
	queue := &fakeQueue{err: errors.New("queue still down")}
	rd, store := newTestRedispatcher(t, queue, 2)

	if err := rd.Buffer(context.Background(), "id-1", "k"); err != nil {
		t.Fatalf("buffer: %v", err)
	}

	// First sweep fails and requeues.
	if err := rd.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	size, _ := store.Size()
	if size != 1 {
		t.Fatalf("job should be requeued after first failure, %d left", size)
	}

	// Second sweep exhausts the budget and drops the job.
	if err := rd.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	size, _ = store.Size()
	if size != 0 {
		t.Fatalf("job should be dropped at max retries, %d left", size)
	}
}
