package buffer

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "dispatch.db"), "dispatch")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueueAndBatchPreservesSubmissionOrder(t *testing.T) {
	store := openTestStore(t)

	base := time.Now()
	for i, todoID := range []string{"a", "b", "c"} {
		err := store.Enqueue(Job{
			TodoID:      todoID,
			ArtifactKey: "todo-tickets/todo-" + todoID + ".png",
			Timestamp:   base.Add(time.Duration(i) * time.Millisecond),
		})
		if err != nil {
			t.Fatalf("enqueue %s: %v", todoID, err)
		}
	}

	jobs, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if jobs[i].TodoID != want {
			t.Fatalf("expected job %d to be %s, got %s", i, want, jobs[i].TodoID)
		}
	}
}

func TestRemoveDeletesOnlyTheGivenJob(t *testing.T) {
	store := openTestStore(t)

	if err := store.Enqueue(Job{TodoID: "keep", ArtifactKey: "k1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.Enqueue(Job{TodoID: "drop", ArtifactKey: "k2"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	jobs, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	for _, job := range jobs {
		if job.TodoID == "drop" {
			if err := store.Remove(job); err != nil {
				t.Fatalf("remove: %v", err)
			}
		}
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 1 {
		t.Fatalf("expected 1 remaining job, got %d", size)
	}
}

func TestRequeueBumpsTimestamp(t *testing.T) {
	store := openTestStore(t)

	old := Job{TodoID: "x", ArtifactKey: "k", Timestamp: time.Now().Add(-time.Hour), Retries: 1}
	if err := store.Enqueue(old); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	jobs, _ := store.GetBatch(1)
	if err := store.Remove(jobs[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	jobs[0].Retries++
	if err := store.Requeue(jobs[0]); err != nil {
		t.Fatalf("requeue: %v", err)
	}

	jobs, _ = store.GetBatch(1)
	if len(jobs) != 1 || jobs[0].Retries != 2 {
		t.Fatalf("expected requeued job with 2 retries, got %+v", jobs)
	}
	if time.Since(jobs[0].Timestamp) > time.Minute {
		t.Fatalf("timestamp not bumped: %v", jobs[0].Timestamp)
	}
}
