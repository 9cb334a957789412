package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

// Crawl collaborators. Each mock forwards to its Fn field; an unset field
// panics so a test fails loudly on an unexpected call.

var (
	_ docqa.Fetcher       = (*Fetcher)(nil)
	_ docqa.Extractor     = (*Extractor)(nil)
	_ docqa.Converter     = (*Converter)(nil)
	_ docqa.LinkExtractor = (*LinkExtractor)(nil)
	_ docqa.PageReader    = (*PageReader)(nil)
	_ docqa.DomainLimiter = (*DomainLimiter)(nil)
)

type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) { return f.FetchFn(ctx, url) }
func (f *Fetcher) Close() error { return f.CloseFn() }

type Extractor struct {
	ExtractFn func(html string) (*docqa.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docqa.ExtractResult, error) { return e.ExtractFn(html) }

type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) { return c.ConvertFn(html) }

type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	return e.ExtractLinksFn(html, baseURL)
}

type PageReader struct {
	ReadPageFn func(ctx context.Context, url string) (*docqa.Page, error)
}

func (r *PageReader) ReadPage(ctx context.Context, url string) (*docqa.Page, error) {
	return r.ReadPageFn(ctx, url)
}

type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error { return l.WaitFn(ctx, domain) }
