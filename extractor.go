package docqa

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content region as HTML.
	ContentHTML string

	// Text is the plain text of the content region, one block per line.
	// Used when converting ContentHTML yields nothing.
	Text string
}

// Extractor extracts the main content region from HTML pages.
type Extractor interface {
	// Extract processes raw HTML and returns its title and main content.
	// Implementations fall back to the full body when no main region exists.
	Extract(html string) (*ExtractResult, error)
}
