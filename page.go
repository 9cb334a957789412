package docqa

import (
	"context"
	"time"
)

// Page represents one fetched documentation page.
type Page struct {
	// URL is the normalized key of the page.
	URL string `json:"url"`

	// SourceURL is the raw URL the page was fetched from.
	SourceURL   string    `json:"sourceUrl"`
	Title       string    `json:"title"`
	Content     string    `json:"content"` // Markdown
	Links       []string  `json:"links,omitempty"`
	ContentHash string    `json:"contentHash"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// PageReader fetches a page and extracts its title, content and links.
type PageReader interface {
	// ReadPage fetches url. Fetch failures return EFETCH.
	ReadPage(ctx context.Context, url string) (*Page, error)
}
