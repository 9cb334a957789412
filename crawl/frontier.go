package crawl

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/docqa"
)

// Compile-time interface verification.
var _ docqa.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO URL frontier keyed by normalized URL.
// A Bloom filter answers most "never seen" checks before the exact set is
// consulted. It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu      sync.Mutex
	filter  *bloom.BloomFilter
	seen    map[string]struct{}
	visited map[string]struct{}
	queue   []docqa.FrontierEntry
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for the Bloom pre-check.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		filter:  bloom.NewWithEstimates(n, fpRate),
		seen:    make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}
}

// Push appends entry to the queue.
// Returns false if its normalized URL has already been queued or visited.
func (f *Frontier) Push(entry docqa.FrontierEntry) bool {
	key := docqa.NormalizeURL(entry.URL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seenLocked(key) {
		return false
	}
	f.filter.AddString(key)
	f.seen[key] = struct{}{}
	f.queue = append(f.queue, entry)
	return true
}

// Pop removes and returns the oldest entry.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (docqa.FrontierEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return docqa.FrontierEntry{}, false
	}
	entry := f.queue[0]
	f.queue[0] = docqa.FrontierEntry{}
	f.queue = f.queue[1:]
	return entry, true
}

// Visit marks the normalized URL as visited.
// Returns false if it was already visited.
func (f *Frontier) Visit(rawURL string) bool {
	key := docqa.NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.visited[key]; ok {
		return false
	}
	f.visited[key] = struct{}{}
	if !f.seenLocked(key) {
		f.filter.AddString(key)
		f.seen[key] = struct{}{}
	}
	return true
}

// Len returns the number of pending entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Visited returns the number of visited URLs.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visited)
}

// Seen returns true if the URL has been queued or visited.
func (f *Frontier) Seen(rawURL string) bool {
	key := docqa.NormalizeURL(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenLocked(key)
}

func (f *Frontier) seenLocked(key string) bool {
	if !f.filter.TestString(key) {
		return false
	}
	_, ok := f.seen[key]
	return ok
}
