package crawl

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/docqa"
	"golang.org/x/time/rate"
)

var _ docqa.DomainLimiter = (*DomainLimiter)(nil)

// DefaultPolitenessDelay is the minimum pause between fetches to one host.
const DefaultPolitenessDelay = 500 * time.Millisecond

// DomainLimiter enforces a minimum delay between requests to the same domain
// using token buckets with a burst of 1. The first request to a domain
// proceeds immediately.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	delay    time.Duration
}

// NewDomainLimiter creates a DomainLimiter that spaces requests to each
// domain at least delay apart. A non-positive delay disables limiting.
func NewDomainLimiter(delay time.Duration) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		delay:    delay,
	}
}

// Wait blocks until the politeness delay for domain has elapsed.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if d.delay <= 0 {
		return ctx.Err()
	}

	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(d.delay), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
