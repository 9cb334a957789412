package docqa

import (
	"context"
	"time"
)

// JobState is the lifecycle state of a job.
type JobState string

// JobState values. JobNotFound is only reported for unknown job ids.
const (
	JobNotFound   JobState = "not_found"
	JobQueued     JobState = "queued"
	JobInProgress JobState = "in_progress"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
	JobCancelled  JobState = "cancelled"
)

// Terminal reports whether s is a final state.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// Queue names.
const (
	QueueDefault       = "default"
	QueueDocumentation = "documentation"
	QueueHighPriority  = "high_priority"
)

// QueueNames lists the queues jobs may be enqueued on.
var QueueNames = []string{QueueDefault, QueueDocumentation, QueueHighPriority}

// DefaultJobTimeout bounds a job's run time unless the request sets one.
const DefaultJobTimeout = time.Hour

// Job is a unit of asynchronous work.
type Job struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Args       map[string]any `json:"args,omitempty"`
	State      JobState       `json:"status"`
	Queue      string         `json:"queue"`
	Timeout    time.Duration  `json:"timeout"`
	EnqueuedAt time.Time      `json:"enqueuedAt"`
	StartedAt  *time.Time     `json:"startedAt,omitempty"`
	EndedAt    *time.Time     `json:"endedAt,omitempty"`
	Result     any            `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Task is the body of a job. Run is driven to completion by a worker;
// ctx is cancelled when the job is cancelled or times out.
type Task interface {
	Run(ctx context.Context) (any, error)
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(ctx context.Context) (any, error)

// Run calls f(ctx).
func (f TaskFunc) Run(ctx context.Context) (any, error) {
	return f(ctx)
}

// JobRequest describes a job to enqueue.
type JobRequest struct {
	Name string
	Args map[string]any

	// Queue defaults to QueueDefault.
	Queue string

	// Timeout defaults to DefaultJobTimeout.
	Timeout time.Duration
	Task    Task
}

// ResultRef replaces a job result that was moved to the result store.
type ResultRef struct {
	StoredKey string   `json:"stored_key"`
	Status    JobState `json:"status"`
}

// JobQueue runs tasks asynchronously on a bounded worker pool.
type JobQueue interface {
	// Enqueue records a queued job and schedules it. It never blocks on
	// pool saturation. Returns EINVALID for a missing task or unknown queue.
	Enqueue(ctx context.Context, req JobRequest) (string, error)

	// Cancel marks a queued or in-progress job cancelled.
	// Returns false if the job is unknown or already terminal.
	Cancel(ctx context.Context, id string) bool

	// Status returns a snapshot of the job. Unknown ids yield a job in
	// state JobNotFound.
	Status(ctx context.Context, id string) *Job

	// Result returns the job's result, resolving values moved to the
	// result store. Returns ENOTFOUND for unknown jobs or expired results
	// and ECONFLICT for jobs that have not completed.
	Result(ctx context.Context, id string) (any, error)
}

// JobStore is the job table and its queue lists. Every method is atomic.
type JobStore interface {
	// CreateJob inserts job and appends its id to its queue list.
	CreateJob(ctx context.Context, job *Job) error

	// FindJobByID returns ENOTFOUND for unknown ids.
	FindJobByID(ctx context.Context, id string) (*Job, error)

	// StartJob moves a queued job to in_progress and removes it from its
	// queue list. Returns ECONFLICT if the job is not queued.
	StartJob(ctx context.Context, id string, at time.Time) (*Job, error)

	// FinishJob records the outcome of an in-progress job. It returns false
	// without writing if the job is no longer in progress.
	FinishJob(ctx context.Context, id string, outcome JobOutcome) (bool, error)

	// CancelJob moves a queued or in-progress job to cancelled.
	// Returns false if the job is terminal or unknown.
	CancelJob(ctx context.Context, id string, at time.Time) (bool, error)

	// QueuedJobIDs returns the ids waiting on the named queue, oldest first.
	QueuedJobIDs(ctx context.Context, queue string) ([]string, error)

	// DeleteJobsEndedBefore removes terminal jobs that ended before cutoff
	// and drops queue list entries that no longer refer to queued jobs.
	DeleteJobsEndedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// JobOutcome is the terminal result of running a job.
type JobOutcome struct {
	State   JobState
	Result  any
	Error   string
	EndedAt time.Time
}

// ResultEntry is a value in the result store.
type ResultEntry struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ResultStore is a key-value store whose entries expire.
type ResultStore interface {
	PutResult(ctx context.Context, key string, value any, ttl time.Duration) error

	// GetResult returns ENOTFOUND for missing or expired keys.
	GetResult(ctx context.Context, key string) (any, error)

	// DeleteExpiredResults removes expired entries.
	DeleteExpiredResults(ctx context.Context) (int, error)
}

// JobObserver is notified of job state transitions.
type JobObserver interface {
	ObserveJob(job *Job)
}
