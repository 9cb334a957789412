package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docqa"
)

var _ docqa.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor finds crawlable same-host links in anchor elements.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks returns the absolute http(s) links of html that stay on the
// host of baseURL and may lead to HTML pages. Links keep document order and
// appear once per normalized URL. Fragments and self-links are dropped.
func (e *LinkExtractor) ExtractLinks(html, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "failed to parse HTML: %v", err)
	}

	self := docqa.NormalizeURL(baseURL)
	seen := map[string]bool{self: true}
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" || isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(base, href)
		if resolved == nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		// Exact host match; subdomains count as other sites.
		if !strings.EqualFold(resolved.Host, base.Host) {
			return
		}

		link := resolved.String()
		if !docqa.IsHTMLLink(link) {
			return
		}

		key := docqa.NormalizeURL(link)
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, link)
	})

	return links, nil
}

// resolveURL resolves href against base with the fragment stripped.
// Returns nil if href cannot be parsed.
func resolveURL(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
