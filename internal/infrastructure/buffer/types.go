package buffer

import (
	"time"

	"github.com/google/uuid"
)

// Job is a print dispatch that failed to reach the queue. The rendered
// artifact is already stored under ArtifactKey; only the enqueue is retried.
type Job struct {
	ID          string    `json:"id"`
	TodoID      string    `json:"todo_id"`
	ArtifactKey string    `json:"artifact_key"`
	Retries     int       `json:"retries"`
	Timestamp   time.Time `json:"timestamp"`

	bucketKey []byte
}

func (j *Job) normalize() {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Timestamp.IsZero() {
		j.Timestamp = time.Now()
	}
}
