package docqa

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be the content region returned by an Extractor.
	Convert(html string) (string, error)
}
