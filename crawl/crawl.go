// Package crawl implements the breadth-first documentation crawl: a FIFO
// URL frontier, per-domain politeness and the loop that drives a
// docqa.PageReader over a site while publishing progress.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"

	"github.com/fwojciec/docqa"
)

// DefaultMaxPages bounds the number of pages one crawl visits.
const DefaultMaxPages = 50

// Frontier configuration.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate of the Bloom pre-check.
	frontierFalsePositiveRate = 0.01
)

// maxProgress caps the completion percentage reported while crawling.
// The remainder belongs to indexing.
const maxProgress = 90.0

// Crawler walks a documentation site breadth-first.
type Crawler struct {
	Reader  docqa.PageReader
	Limiter docqa.DomainLimiter

	// Statuses receives progress after every page. Optional.
	Statuses docqa.StatusService

	// MaxPages bounds visited pages. Defaults to DefaultMaxPages.
	MaxPages int

	Logger *slog.Logger
}

// Request describes one crawl.
type Request struct {
	DocID    string
	SeedURL  string
	MaxDepth int

	// Excluded patterns are matched against raw URLs. Matching URLs are
	// never fetched.
	Excluded []*regexp.Regexp
}

// Result holds the outcome of a crawl.
type Result struct {
	// Pages are the successfully read pages in visit order.
	Pages []*docqa.Page

	// Visited counts fetch attempts, including failed ones.
	Visited int
	Failed  int
}

// ByURL returns the pages keyed by normalized URL.
func (r *Result) ByURL() map[string]*docqa.Page {
	m := make(map[string]*docqa.Page, len(r.Pages))
	for _, p := range r.Pages {
		m[p.URL] = p
	}
	return m
}

// Crawl visits pages reachable from req.SeedURL within req.MaxDepth links,
// up to MaxPages. Failed pages are logged and skipped, except the seed,
// whose failure returns EFETCH. Cancelling ctx stops the crawl and returns
// the context error.
func (c *Crawler) Crawl(ctx context.Context, req Request) (*Result, error) {
	if err := docqa.ValidateURL(req.SeedURL); err != nil {
		return nil, err
	}
	if req.MaxDepth < 0 {
		return nil, docqa.Errorf(docqa.EINVALID, "max depth must not be negative")
	}
	if isExcluded(req.Excluded, req.SeedURL) {
		return nil, docqa.Errorf(docqa.EINVALID, "seed URL %s matches an excluded path", req.SeedURL)
	}

	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	log := c.logger().With("doc_id", req.DocID)

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(docqa.FrontierEntry{URL: req.SeedURL})

	var result Result
	for result.Visited < maxPages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, ok := frontier.Pop()
		if !ok {
			break
		}
		if isExcluded(req.Excluded, entry.URL) {
			continue
		}
		if !frontier.Visit(entry.URL) {
			continue
		}

		if c.Limiter != nil {
			if err := c.Limiter.Wait(ctx, hostOf(entry.URL)); err != nil {
				return nil, err
			}
		}

		page, err := c.Reader.ReadPage(ctx, entry.URL)
		result.Visited++
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if entry.Depth == 0 {
				return nil, docqa.Errorf(docqa.EFETCH, "fetch seed page %s: %v", entry.URL, err)
			}
			result.Failed++
			log.Warn("skipping page", "url", entry.URL, "err", err)
			c.report(ctx, log, req.DocID, &result, frontier.Len())
			continue
		}
		result.Pages = append(result.Pages, page)

		if entry.Depth < req.MaxDepth {
			for _, link := range page.Links {
				if isExcluded(req.Excluded, link) {
					continue
				}
				frontier.Push(docqa.FrontierEntry{URL: link, Depth: entry.Depth + 1})
			}
		}

		c.report(ctx, log, req.DocID, &result, frontier.Len())
	}

	log.Info("crawl finished", "visited", result.Visited, "failed", result.Failed, "pending", frontier.Len())
	return &result, nil
}

// report publishes crawl progress. SectionsAnalyzed counts pages read so
// far, never failed fetches, so it only grows through to completion. A
// status that can no longer be updated does not stop the crawl;
// cancellation arrives through ctx.
func (c *Crawler) report(ctx context.Context, log *slog.Logger, docID string, result *Result, pending int) {
	if c.Statuses == nil || docID == "" {
		return
	}
	read := len(result.Pages)
	total := result.Visited + pending
	pct := Progress(result.Visited, total)
	msg := fmt.Sprintf("crawled %d of %d pages", result.Visited, total)
	_, err := c.Statuses.UpdateStatus(ctx, docID, docqa.StatusUpdate{
		SectionsAnalyzed:     &read,
		TotalPages:           &total,
		CompletionPercentage: &pct,
		Message:              &msg,
	})
	if err != nil {
		log.Debug("status update rejected", "err", err)
	}
}

// Progress returns the crawl completion percentage for visited of total
// known pages, capped at 90.
func Progress(visited, total int) float64 {
	if total <= 0 {
		return 0
	}
	return min(maxProgress, 100*float64(visited)/float64(total))
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func isExcluded(patterns []*regexp.Regexp, rawURL string) bool {
	for _, re := range patterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
