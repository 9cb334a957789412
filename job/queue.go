// Package job runs docqa tasks asynchronously on a bounded worker pool
// backed by a docqa.JobStore and a docqa.ResultStore.
package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/google/uuid"
)

// Defaults applied to zero-valued Queue fields.
const (
	DefaultWorkers         = 3
	DefaultResultThreshold = 10000
	DefaultResultTTL       = 3 * 24 * time.Hour
	DefaultRetention       = 3 * 24 * time.Hour
	DefaultSweepInterval   = 6 * time.Hour
)

var _ docqa.JobQueue = (*Queue)(nil)

// Queue implements docqa.JobQueue. Fields must be set before the first
// Enqueue; workers start on demand.
type Queue struct {
	// Workers is the number of jobs run at once.
	Workers int

	// ResultThreshold is the JSON size in bytes above which a result is
	// moved to the result store.
	ResultThreshold int
	ResultTTL       time.Duration

	// Retention is how long terminal jobs are kept before Reap deletes them.
	Retention     time.Duration
	SweepInterval time.Duration

	Observer docqa.JobObserver
	Logger   *slog.Logger
	Now      func() time.Time

	store   docqa.JobStore
	results docqa.ResultStore
	pending *dispatchList
	start   sync.Once
	wg      sync.WaitGroup

	mu      sync.Mutex
	bodies  map[string]docqa.Task
	cancels map[string]context.CancelFunc
	closed  bool
}

// NewQueue returns a queue recording jobs in store and offloading large
// results to results.
func NewQueue(store docqa.JobStore, results docqa.ResultStore) *Queue {
	return &Queue{
		store:   store,
		results: results,
		pending: newDispatchList(),
		bodies:  make(map[string]docqa.Task),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Enqueue records a queued job and hands it to the worker pool.
func (q *Queue) Enqueue(ctx context.Context, req docqa.JobRequest) (string, error) {
	if req.Task == nil {
		return "", docqa.Errorf(docqa.EINVALID, "job task required")
	}
	queue := req.Queue
	if queue == "" {
		queue = docqa.QueueDefault
	}
	if !slices.Contains(docqa.QueueNames, queue) {
		return "", docqa.Errorf(docqa.EINVALID, "unknown queue %q", queue)
	}
	if req.Timeout < 0 {
		return "", docqa.Errorf(docqa.EINVALID, "job timeout must not be negative")
	}
	timeout := req.Timeout
	if timeout == 0 {
		timeout = docqa.DefaultJobTimeout
	}

	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return "", docqa.Errorf(docqa.ECONFLICT, "job queue closed")
	}

	job := &docqa.Job{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Args:       req.Args,
		State:      docqa.JobQueued,
		Queue:      queue,
		Timeout:    timeout,
		EnqueuedAt: q.now(),
	}
	if err := q.store.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}

	q.mu.Lock()
	q.bodies[job.ID] = req.Task
	q.mu.Unlock()

	q.notify(job)

	q.start.Do(q.startWorkers)
	if !q.pending.push(job.ID) {
		q.forget(job.ID)
		q.abandon(context.WithoutCancel(ctx), job.ID)
		return "", docqa.Errorf(docqa.ECONFLICT, "job queue closed")
	}
	q.logger().Debug("job enqueued", "job", job.ID, "name", job.Name, "queue", queue)
	return job.ID, nil
}

// Cancel marks a queued or in-progress job cancelled and cancels the
// context of its running task, which aborts I/O the task has in flight
// under that context, such as an HTTP fetch. The task is not interrupted
// otherwise; its outcome is discarded when it returns.
func (q *Queue) Cancel(ctx context.Context, id string) bool {
	ok, err := q.store.CancelJob(ctx, id, q.now())
	if err != nil {
		q.logger().Error("cancel job", "job", id, "err", err)
		return false
	}
	if !ok {
		return false
	}

	q.mu.Lock()
	cancel := q.cancels[id]
	q.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	q.logger().Info("job cancelled", "job", id)
	q.observe(ctx, id)
	return true
}

// Status returns a snapshot of the job, or a job in state JobNotFound.
func (q *Queue) Status(ctx context.Context, id string) *docqa.Job {
	job, err := q.store.FindJobByID(ctx, id)
	if err != nil {
		if docqa.ErrorCode(err) != docqa.ENOTFOUND {
			q.logger().Error("find job", "job", id, "err", err)
		}
		return &docqa.Job{ID: id, State: docqa.JobNotFound}
	}
	return job
}

// Result returns the result of a completed job, loading it from the result
// store when it was offloaded.
func (q *Queue) Result(ctx context.Context, id string) (any, error) {
	job, err := q.store.FindJobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.State != docqa.JobCompleted {
		return nil, docqa.Errorf(docqa.ECONFLICT, "job %s is %s", id, job.State)
	}
	ref, ok := job.Result.(docqa.ResultRef)
	if !ok {
		return job.Result, nil
	}
	return q.results.GetResult(ctx, ref.StoredKey)
}

// Pending returns the number of jobs waiting for a worker.
func (q *Queue) Pending() int {
	return q.pending.len()
}

// Reap deletes terminal jobs older than the retention window, expired
// results and stale queue list entries.
func (q *Queue) Reap(ctx context.Context) (jobs, results int, err error) {
	cutoff := q.now().Add(-q.retention())
	if jobs, err = q.store.DeleteJobsEndedBefore(ctx, cutoff); err != nil {
		return 0, 0, fmt.Errorf("delete jobs: %w", err)
	}
	if results, err = q.results.DeleteExpiredResults(ctx); err != nil {
		return jobs, 0, fmt.Errorf("delete results: %w", err)
	}
	q.logger().Info("reaped jobs", "jobs", jobs, "results", results)
	return jobs, results, nil
}

// RunReaper calls Reap every SweepInterval until ctx is done.
func (q *Queue) RunReaper(ctx context.Context) error {
	interval := q.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, _, err := q.Reap(ctx); err != nil && ctx.Err() == nil {
				q.logger().Error("reap", "err", err)
			}
		}
	}
}

// Close stops dispatching and waits for running jobs to return. Jobs not
// yet picked up are marked cancelled, so Reap eventually removes them.
func (q *Queue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	for _, id := range q.pending.stop() {
		q.forget(id)
		q.abandon(context.Background(), id)
	}
	q.wg.Wait()
	return nil
}

// abandon cancels the record of a job that will never be dispatched.
func (q *Queue) abandon(ctx context.Context, id string) {
	if _, err := q.store.CancelJob(ctx, id, q.now()); err != nil {
		q.logger().Error("cancel undispatched job", "job", id, "err", err)
		return
	}
	q.logger().Info("job dropped by closing queue", "job", id)
	q.observe(ctx, id)
}

func (q *Queue) startWorkers() {
	n := q.Workers
	if n <= 0 {
		n = DefaultWorkers
	}
	q.wg.Add(n)
	for range n {
		go q.work()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		id, ok := q.pending.pop()
		if !ok {
			return
		}
		q.execute(id)
	}
}

// execute drives one job from queued to a terminal state.
func (q *Queue) execute(id string) {
	defer q.forget(id)

	q.mu.Lock()
	task := q.bodies[id]
	q.mu.Unlock()

	// Register the cancel func before starting so a concurrent Cancel
	// either sees it or makes StartJob fail.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.mu.Lock()
	q.cancels[id] = cancel
	q.mu.Unlock()

	job, err := q.store.StartJob(ctx, id, q.now())
	if err != nil {
		if docqa.ErrorCode(err) != docqa.ECONFLICT {
			q.logger().Error("start job", "job", id, "err", err)
		}
		return
	}
	q.notify(job)

	log := q.logger().With("job", id, "name", job.Name)
	log.Info("job started", "queue", job.Queue)
	start := time.Now()

	runCtx, stop := context.WithTimeout(ctx, job.Timeout)
	result, err := run(runCtx, task)
	timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)
	stop()

	outcome := docqa.JobOutcome{State: docqa.JobCompleted, EndedAt: q.now()}
	if err != nil {
		msg := docqa.ErrorMessage(err)
		if timedOut {
			msg = fmt.Sprintf("timed out after %s", job.Timeout)
		} else if docqa.ErrorCode(err) == docqa.EINTERNAL {
			msg = err.Error()
		}
		outcome.State = docqa.JobFailed
		outcome.Error = docqa.Errorf(docqa.EJOB, "%s: %s", job.Name, msg).Error()
	} else {
		outcome.Result = q.offload(context.Background(), job, result)
	}

	ok, err := q.store.FinishJob(context.Background(), id, outcome)
	switch {
	case err != nil:
		log.Error("finish job", "err", err)
		return
	case !ok:
		log.Info("discarding outcome of cancelled job", "duration", time.Since(start))
		return
	}
	if outcome.State == docqa.JobFailed {
		log.Warn("job failed", "duration", time.Since(start), "err", outcome.Error)
	} else {
		log.Info("job completed", "duration", time.Since(start))
	}
	q.observe(context.Background(), id)
}

// run calls task.Run, converting a panic into an error.
func run(ctx context.Context, task docqa.Task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return task.Run(ctx)
}

// offload moves results larger than the threshold to the result store and
// returns the value to record on the job.
func (q *Queue) offload(ctx context.Context, job *docqa.Job, result any) any {
	if result == nil {
		return nil
	}
	threshold := q.ResultThreshold
	if threshold <= 0 {
		threshold = DefaultResultThreshold
	}
	data, err := json.Marshal(result)
	if err != nil {
		q.logger().Warn("encode job result", "job", job.ID, "err", err)
		return result
	}
	if len(data) <= threshold {
		return result
	}

	key := job.Name + ":" + job.ID
	ttl := q.ResultTTL
	if ttl <= 0 {
		ttl = DefaultResultTTL
	}
	if err := q.results.PutResult(ctx, key, result, ttl); err != nil {
		q.logger().Warn("store job result", "job", job.ID, "key", key, "err", err)
		return result
	}
	return docqa.ResultRef{StoredKey: key, Status: docqa.JobCompleted}
}

// observe notifies the observer of the stored state of a job that can no
// longer change.
func (q *Queue) observe(ctx context.Context, id string) {
	if q.Observer == nil {
		return
	}
	job, err := q.store.FindJobByID(ctx, id)
	if err != nil {
		return
	}
	q.Observer.ObserveJob(job)
}

func (q *Queue) notify(job *docqa.Job) {
	if q.Observer == nil {
		return
	}
	snapshot := *job
	q.Observer.ObserveJob(&snapshot)
}

func (q *Queue) forget(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.cancels, id)
	delete(q.bodies, id)
}

func (q *Queue) retention() time.Duration {
	if q.Retention <= 0 {
		return DefaultRetention
	}
	return q.Retention
}

func (q *Queue) now() time.Time {
	if q.Now != nil {
		return q.Now()
	}
	return time.Now()
}

func (q *Queue) logger() *slog.Logger {
	if q.Logger != nil {
		return q.Logger
	}
	return slog.New(slog.DiscardHandler)
}
