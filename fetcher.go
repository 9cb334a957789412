package docqa

import "context"

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch issues a timed GET for url and returns the response body.
	// Non-2xx responses, transport failures and timeouts return EFETCH.
	// Fetch does not retry.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
