// Package memory provides the in-memory store shared by the crawl pipeline
// and the job queue.
package memory

import (
	"sync"
	"time"

	"github.com/fwojciec/docqa"
)

// Compile-time interface verification.
var (
	_ docqa.StatusService = (*Store)(nil)
	_ docqa.IndexStore    = (*Store)(nil)
	_ docqa.JobStore      = (*Store)(nil)
	_ docqa.ResultStore   = (*Store)(nil)
)

// Store holds document statuses, document indexes, jobs, queue lists and
// stored results. One mutex guards all of them and is never held across I/O.
// Values are copied in and out so callers never share mutable state.
type Store struct {
	mu       sync.Mutex
	statuses map[string]*docqa.DocumentStatus
	indexes  map[string]*docqa.DocumentIndex
	jobs     map[string]*docqa.Job
	queues   map[string][]string
	results  map[string]docqa.ResultEntry

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		statuses: make(map[string]*docqa.DocumentStatus),
		indexes:  make(map[string]*docqa.DocumentIndex),
		jobs:     make(map[string]*docqa.Job),
		queues:   make(map[string][]string),
		results:  make(map[string]docqa.ResultEntry),
		Now:      time.Now,
	}
}

func (s *Store) now() time.Time {
	return s.Now().UTC()
}

func pointerTime(t time.Time) *time.Time {
	ts := t
	return &ts
}
