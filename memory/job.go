package memory

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/fwojciec/docqa"
)

// CreateJob inserts job and appends its id to its queue list.
func (s *Store) CreateJob(_ context.Context, job *docqa.Job) error {
	if job.ID == "" {
		return docqa.Errorf(docqa.EINVALID, "job ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return docqa.Errorf(docqa.ECONFLICT, "job %s already exists", job.ID)
	}
	s.jobs[job.ID] = copyJob(job)
	s.queues[job.Queue] = append(s.queues[job.Queue], job.ID)
	return nil
}

// FindJobByID returns a snapshot of the job.
func (s *Store) FindJobByID(_ context.Context, id string) (*docqa.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "job %s not found", id)
	}
	return copyJob(job), nil
}

// StartJob moves a queued job to in_progress.
func (s *Store) StartJob(_ context.Context, id string, at time.Time) (*docqa.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "job %s not found", id)
	}
	if job.State != docqa.JobQueued {
		return nil, docqa.Errorf(docqa.ECONFLICT, "job %s is %s", id, job.State)
	}
	job.State = docqa.JobInProgress
	job.StartedAt = pointerTime(at)
	s.removeFromQueue(job.Queue, id)
	return copyJob(job), nil
}

// FinishJob records the outcome of an in-progress job. A job cancelled while
// running keeps its cancelled state and the outcome is dropped.
func (s *Store) FinishJob(_ context.Context, id string, outcome docqa.JobOutcome) (bool, error) {
	if !outcome.State.Terminal() || outcome.State == docqa.JobCancelled {
		return false, docqa.Errorf(docqa.EINVALID, "invalid job outcome %s", outcome.State)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return false, docqa.Errorf(docqa.ENOTFOUND, "job %s not found", id)
	}
	if job.State != docqa.JobInProgress {
		return false, nil
	}
	job.State = outcome.State
	job.Result = outcome.Result
	job.Error = outcome.Error
	job.EndedAt = pointerTime(outcome.EndedAt)
	return true, nil
}

// CancelJob moves a queued or in-progress job to cancelled.
func (s *Store) CancelJob(_ context.Context, id string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.State.Terminal() {
		return false, nil
	}
	job.State = docqa.JobCancelled
	job.EndedAt = pointerTime(at)
	s.removeFromQueue(job.Queue, id)
	return true, nil
}

// QueuedJobIDs returns the ids waiting on the named queue.
func (s *Store) QueuedJobIDs(_ context.Context, queue string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.queues[queue]), nil
}

// DeleteJobsEndedBefore removes terminal jobs that ended before cutoff and
// prunes queue list entries that no longer refer to queued jobs.
func (s *Store) DeleteJobsEndedBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, job := range s.jobs {
		if job.State.Terminal() && job.EndedAt != nil && job.EndedAt.Before(cutoff) {
			delete(s.jobs, id)
			n++
		}
	}
	for name, ids := range s.queues {
		ids = slices.DeleteFunc(ids, func(id string) bool {
			job, ok := s.jobs[id]
			return !ok || job.State != docqa.JobQueued
		})
		if len(ids) == 0 {
			delete(s.queues, name)
			continue
		}
		s.queues[name] = ids
	}
	return n, nil
}

func (s *Store) removeFromQueue(queue, id string) {
	ids := s.queues[queue]
	if i := slices.Index(ids, id); i != -1 {
		s.queues[queue] = slices.Delete(ids, i, i+1)
	}
}

func copyJob(job *docqa.Job) *docqa.Job {
	j := *job
	j.Args = maps.Clone(job.Args)
	if job.StartedAt != nil {
		j.StartedAt = pointerTime(*job.StartedAt)
	}
	if job.EndedAt != nil {
		j.EndedAt = pointerTime(*job.EndedAt)
	}
	return &j
}
