package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Status is a job's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job records one triggered reconciliation pass. The result payload is
// the pass summary, stored as raw JSON.
type Job struct {
	ID         string          `json:"id"`
	Task       string          `json:"task"`
	Status     Status          `json:"status"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	EndedAt    *time.Time      `json:"ended_at,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ErrNotFound is returned for unknown or expired job ids.
var ErrNotFound = errors.New("job not found")

const (
	keyPrefix  = "themis:jobs:"
	defaultTTL = 24 * time.Hour
)

// Store keeps job records in Redis with a TTL, replacing any durable
// job table. Records expire a day after enqueue.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, ttl: defaultTTL}
}

// Enqueue creates a pending job record and returns it.
func (s *Store) Enqueue(ctx context.Context, task string) (Job, error) {
	job := Job{
		ID:         uuid.NewString(),
		Task:       task,
		Status:     StatusPending,
		EnqueuedAt: time.Now().UTC(),
	}
	if err := s.save(ctx, job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// MarkRunning flips a job to running and stamps its start time.
func (s *Store) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, func(job *Job) {
		now := time.Now().UTC()
		job.Status = StatusRunning
		job.StartedAt = &now
	})
}

// MarkCompleted records the job's result payload and closes it.
func (s *Store) MarkCompleted(ctx context.Context, id string, result interface{}) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encoding job result")
	}
	return s.update(ctx, id, func(job *Job) {
		now := time.Now().UTC()
		job.Status = StatusCompleted
		job.EndedAt = &now
		job.Result = payload
	})
}

// MarkFailed closes the job with an error message.
func (s *Store) MarkFailed(ctx context.Context, id string, jobErr error) error {
	return s.update(ctx, id, func(job *Job) {
		now := time.Now().UTC()
		job.Status = StatusFailed
		job.EndedAt = &now
		job.Error = jobErr.Error()
	})
}

// Get fetches a job by id.
func (s *Store) Get(ctx context.Context, id string) (Job, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, errors.Wrap(err, "reading job record")
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return Job{}, errors.Wrap(err, "decoding job record")
	}
	return job, nil
}

func (s *Store) update(ctx context.Context, id string, mutate func(*Job)) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	mutate(&job)
	return s.save(ctx, job)
}

func (s *Store) save(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "encoding job record")
	}
	if err := s.client.Set(ctx, keyPrefix+job.ID, payload, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "writing job record")
	}
	return nil
}
