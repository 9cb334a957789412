package docqa

import "context"

// FrontierEntry is a URL waiting to be crawled and its link distance from the seed.
type FrontierEntry struct {
	URL   string
	Depth int
}

// URLFrontier manages the pending queue of a breadth-first crawl.
type URLFrontier interface {
	// Push appends an entry to the queue.
	// Returns false if its normalized URL has already been queued or visited.
	Push(entry FrontierEntry) bool

	// Pop removes and returns the oldest entry.
	// Returns false if the frontier is empty.
	Pop() (FrontierEntry, bool)

	// Visit marks the normalized URL as visited.
	// Returns false if it was already visited.
	Visit(url string) bool

	// Len returns the number of pending entries.
	Len() int

	// Visited returns the number of visited URLs.
	Visited() int
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
