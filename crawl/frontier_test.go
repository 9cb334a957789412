package crawl_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/crawl"
	"github.com/stretchr/testify/assert"
)

func TestFrontier_Push_rejects_duplicate_normalized_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	assert.True(t, f.Push(docqa.FrontierEntry{URL: "https://example.com/docs/page1"}))
	assert.False(t, f.Push(docqa.FrontierEntry{URL: "https://example.com/docs/page1"}))
	assert.False(t, f.Push(docqa.FrontierEntry{URL: "https://example.com/docs/page1/"}))
	assert.False(t, f.Push(docqa.FrontierEntry{URL: "http://example.com/docs/page1?ref=nav#top"}))
	assert.Equal(t, 1, f.Len())
}

func TestFrontier_Pop_returns_entries_in_FIFO_order(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	f.Push(docqa.FrontierEntry{URL: "https://example.com/a", Depth: 1})
	f.Push(docqa.FrontierEntry{URL: "https://example.com/b", Depth: 1})
	f.Push(docqa.FrontierEntry{URL: "https://example.com/a/child", Depth: 2})

	entry, ok := f.Pop()
	assert.True(t, ok)
	assert.Equal(t, docqa.FrontierEntry{URL: "https://example.com/a", Depth: 1}, entry)

	entry, ok = f.Pop()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/b", entry.URL)

	entry, ok = f.Pop()
	assert.True(t, ok)
	assert.Equal(t, 2, entry.Depth)

	_, ok = f.Pop()
	assert.False(t, ok, "pop on empty frontier should return false")
}

func TestFrontier_Visit_marks_each_URL_once(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	assert.True(t, f.Visit("https://example.com/docs"))
	assert.False(t, f.Visit("https://example.com/docs/"))
	assert.Equal(t, 1, f.Visited())

	assert.False(t, f.Push(docqa.FrontierEntry{URL: "https://example.com/docs"}), "visited URL should not be queued again")
}

func TestFrontier_Len_tracks_queue_size(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	assert.Equal(t, 0, f.Len(), "new frontier should be empty")

	f.Push(docqa.FrontierEntry{URL: "https://example.com/a"})
	assert.Equal(t, 1, f.Len())

	f.Push(docqa.FrontierEntry{URL: "https://example.com/b"})
	assert.Equal(t, 2, f.Len())

	f.Pop()
	assert.Equal(t, 1, f.Len())
}

func TestFrontier_Seen_tracks_all_pushed_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	assert.False(t, f.Seen("https://example.com/page"), "unseen URL should return false")

	f.Push(docqa.FrontierEntry{URL: "https://example.com/page"})
	assert.True(t, f.Seen("https://example.com/page"), "pushed URL should be seen")

	f.Pop()
	assert.True(t, f.Seen("https://example.com/page/"), "popped URL should still be seen")
}

func TestFrontier_concurrent_access(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(10000, 0.01)

	const numGoroutines = 10
	const numOpsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOpsPerGoroutine; j++ {
				f.Push(docqa.FrontierEntry{URL: fmt.Sprintf("https://example.com/%d/%d", id, j)})
			}
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numOpsPerGoroutine; j++ {
				if entry, ok := f.Pop(); ok {
					f.Visit(entry.URL)
				}
				f.Len()
			}
		}()
	}

	wg.Wait()

	for i := 0; i < numGoroutines; i++ {
		for j := 0; j < numOpsPerGoroutine; j++ {
			url := fmt.Sprintf("https://example.com/%d/%d", i, j)
			assert.True(t, f.Seen(url), "pushed URL %s should be seen", url)
		}
	}
}
