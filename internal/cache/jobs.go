package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recipebox/larder/internal/recipe"
)

// JobStatus is where an async extraction currently stands.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobFetching   JobStatus = "fetching"
	JobExtracting JobStatus = "extracting"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == JobCompleted || s == JobFailed
}

// JobTTL bounds how long a job record is kept after its last update.
const JobTTL = 7 * 24 * time.Hour

const jobPrefix = "job:"

var (
	ErrJobNotFound      = errors.New("job not found")
	ErrStoreUnavailable = errors.New("job store has no redis connection")
)

// Job is one async extraction.
type Job struct {
	ID        string                  `json:"id"`
	URL       string                  `json:"url"`
	Status    JobStatus               `json:"status"`
	Error     string                  `json:"error,omitempty"`
	ErrorCode string                  `json:"error_code,omitempty"`
	Recipe    *recipe.ExtractedRecipe `json:"recipe,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// JobUpdate is applied by Update. Empty fields leave the job unchanged.
type JobUpdate struct {
	Status    JobStatus
	Error     string
	ErrorCode string
	Recipe    *recipe.ExtractedRecipe
}

// Apply merges u into j.
func (j *Job) Apply(u JobUpdate, now time.Time) {
	if u.Status != "" {
		j.Status = u.Status
	}
	if u.Error != "" {
		j.Error = u.Error
	}
	if u.ErrorCode != "" {
		j.ErrorCode = u.ErrorCode
	}
	if u.Recipe != nil {
		j.Recipe = u.Recipe
	}
	// An earlier attempt's failure no longer applies once a retry succeeds.
	if j.Status == JobCompleted {
		j.Error = ""
		j.ErrorCode = ""
	}
	j.UpdatedAt = now
}

// JobStore keeps job records under job:<id>.
type JobStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewJobStore(client *redis.Client) *JobStore {
	return &JobStore{client: client, ttl: JobTTL, now: time.Now}
}

// JobKey is the Redis key for a job id.
func JobKey(id string) string {
	return jobPrefix + id
}

func (s *JobStore) Create(ctx context.Context, job *Job) error {
	if s.client == nil {
		return ErrStoreUnavailable
	}
	now := s.now().UTC()
	if job.Status == "" {
		job.Status = JobPending
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	return s.save(ctx, job)
}

func (s *JobStore) Get(ctx context.Context, id string) (*Job, error) {
	if s.client == nil {
		return nil, ErrStoreUnavailable
	}

	data, err := s.client.Get(ctx, JobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", id, err)
	}
	return &job, nil
}

// Update loads the job, applies u and writes it back. Jobs have a single
// writer, the worker running them, so no transaction is needed.
func (s *JobStore) Update(ctx context.Context, id string, u JobUpdate) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	job.Apply(u, s.now().UTC())
	return s.save(ctx, job)
}

func (s *JobStore) save(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, JobKey(job.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}
