package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.JobQueue = (*JobQueue)(nil)

// JobQueue is a mock implementation of docqa.JobQueue.
type JobQueue struct {
	EnqueueFn func(ctx context.Context, req docqa.JobRequest) (string, error)
	CancelFn  func(ctx context.Context, id string) bool
	StatusFn  func(ctx context.Context, id string) *docqa.Job
	ResultFn  func(ctx context.Context, id string) (any, error)
}

func (q *JobQueue) Enqueue(ctx context.Context, req docqa.JobRequest) (string, error) {
	return q.EnqueueFn(ctx, req)
}

func (q *JobQueue) Cancel(ctx context.Context, id string) bool {
	return q.CancelFn(ctx, id)
}

func (q *JobQueue) Status(ctx context.Context, id string) *docqa.Job {
	return q.StatusFn(ctx, id)
}

func (q *JobQueue) Result(ctx context.Context, id string) (any, error) {
	return q.ResultFn(ctx, id)
}
