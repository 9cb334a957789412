package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/docqa/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// timed returns how long a single Wait for host took.
func timed(t *testing.T, l *crawl.DomainLimiter, host string) time.Duration {
	t.Helper()
	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), host))
	return time.Since(start)
}

func TestDomainLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("first fetch per host is immediate, second waits", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(100 * time.Millisecond)

		assert.Less(t, timed(t, l, "docs.example.com"), 50*time.Millisecond)
		assert.GreaterOrEqual(t, timed(t, l, "docs.example.com"), 80*time.Millisecond)
	})

	t.Run("hosts are limited independently", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(time.Second)
		timed(t, l, "docs.example.com")

		assert.Less(t, timed(t, l, "api.example.com"), 50*time.Millisecond)
	})

	t.Run("default delay", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(crawl.DefaultPolitenessDelay)
		timed(t, l, "docs.example.com")

		assert.GreaterOrEqual(t, timed(t, l, "docs.example.com"), crawl.DefaultPolitenessDelay-50*time.Millisecond)
	})

	t.Run("zero delay disables limiting", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(0)
		var total time.Duration
		for range 5 {
			total += timed(t, l, "docs.example.com")
		}

		assert.Less(t, total, 50*time.Millisecond)
	})

	t.Run("deadline ends the wait", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(time.Minute)
		timed(t, l, "docs.example.com")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		assert.Error(t, l.Wait(ctx, "docs.example.com"))
	})

	t.Run("concurrent workers are spaced out", func(t *testing.T) {
		t.Parallel()

		l := crawl.NewDomainLimiter(20 * time.Millisecond)
		start := time.Now()

		var g errgroup.Group
		for range 4 {
			g.Go(func() error { return l.Wait(context.Background(), "docs.example.com") })
		}

		require.NoError(t, g.Wait())
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})
}
