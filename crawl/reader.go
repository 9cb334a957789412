package crawl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docqa"
)

var _ docqa.PageReader = (*Reader)(nil)

// Reader composes a Fetcher, an Extractor, a Converter and a LinkExtractor
// into a docqa.PageReader.
type Reader struct {
	Fetcher   docqa.Fetcher
	Extractor docqa.Extractor
	Converter docqa.Converter

	// Links discovers outgoing links. A nil Links yields pages without links.
	Links docqa.LinkExtractor

	// Now returns the fetch timestamp. Defaults to time.Now.
	Now func() time.Time
}

// ReadPage fetches rawURL and turns the response into a Page.
// The title falls back to the URL and empty converted content falls back to
// the extractor's plain text.
func (r *Reader) ReadPage(ctx context.Context, rawURL string) (*docqa.Page, error) {
	html, err := r.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	extracted, err := r.Extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", rawURL, err)
	}

	var content string
	if extracted.ContentHTML != "" {
		markdown, err := r.Converter.Convert(extracted.ContentHTML)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", rawURL, err)
		}
		content = strings.TrimSpace(markdown)
	}
	if content == "" {
		content = strings.TrimSpace(extracted.Text)
	}

	title := strings.TrimSpace(extracted.Title)
	if title == "" {
		title = rawURL
	}

	// A page whose links cannot be parsed is still worth indexing.
	var links []string
	if r.Links != nil {
		if found, err := r.Links.ExtractLinks(html, rawURL); err == nil {
			links = found
		}
	}

	return &docqa.Page{
		URL:         docqa.NormalizeURL(rawURL),
		SourceURL:   rawURL,
		Title:       title,
		Content:     content,
		Links:       links,
		ContentHash: docqa.ContentHash(content),
		FetchedAt:   r.now(),
	}, nil
}

func (r *Reader) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}
