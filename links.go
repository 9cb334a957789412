package docqa

// LinkExtractor discovers crawlable links on a page.
type LinkExtractor interface {
	// ExtractLinks returns absolute http(s) links from html that share the
	// host of baseURL and may lead to HTML pages, in document order,
	// without duplicates, fragments or self-links.
	ExtractLinks(html, baseURL string) ([]string, error)
}
