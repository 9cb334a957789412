package job

import "sync"

// dispatchList is an unbounded FIFO of job ids shared by the workers.
// Push never blocks, so callers are never held up by a saturated pool.
type dispatchList struct {
	mu      sync.Mutex
	cond    *sync.Cond
	ids     []string
	stopped bool
}

func newDispatchList() *dispatchList {
	l := &dispatchList{}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// push appends id. Returns false once the list is stopped.
func (l *dispatchList) push(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return false
	}
	l.ids = append(l.ids, id)
	l.cond.Signal()
	return true
}

// pop blocks until an id is available or the list is stopped.
// Returns false after stop.
func (l *dispatchList) pop() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for {
		if l.stopped {
			return "", false
		}
		if len(l.ids) > 0 {
			id := l.ids[0]
			l.ids = l.ids[1:]
			return id, true
		}
		l.cond.Wait()
	}
}

// len returns the number of ids waiting for a worker.
func (l *dispatchList) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

// stop wakes every waiting worker and returns the ids not yet popped.
func (l *dispatchList) stop() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopped = true
	dropped := l.ids
	l.ids = nil
	l.cond.Broadcast()
	return dropped
}
