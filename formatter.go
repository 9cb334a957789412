package docqa

import "strings"

// FormatContext formats retrieved passages for display or LLM context.
// Uses the page title if available, falls back to the page URL.
// Passages are separated by blank lines.
func FormatContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		header := r.Title
		if header == "" {
			header = r.PageURL
		}
		parts = append(parts, "## Source: "+header+"\n"+r.Text)
	}

	return strings.Join(parts, "\n\n")
}

// Sources returns the distinct page URLs of results in rank order.
func Sources(results []SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	var urls []string
	for _, r := range results {
		if _, ok := seen[r.PageURL]; ok {
			continue
		}
		seen[r.PageURL] = struct{}{}
		urls = append(urls, r.PageURL)
	}
	return urls
}
