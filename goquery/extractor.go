// Package goquery implements content and link extraction with CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docqa"
)

var _ docqa.Extractor = (*Extractor)(nil)

// contentSelectors are tried in order; the first match is the content region.
var contentSelectors = []string{"main", "article", "[role=main]", "body"}

// chromeSelector matches page furniture removed before extraction.
const chromeSelector = "script, style, noscript, template, nav, footer"

// blockSelector matches elements rendered as one line of plain text.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, pre, blockquote, td, th, dt, dd"

// Extractor selects the main content region with CSS selectors.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title and the first of main, article,
// [role=main] or body, with scripts, styles and navigation removed.
func (e *Extractor) Extract(html string) (*docqa.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = collapseSpace(doc.Find("h1").First().Text())
	}

	doc.Find(chromeSelector).Remove()

	var region *goquery.Selection
	for _, sel := range contentSelectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			region = found
			break
		}
	}
	if region == nil {
		return &docqa.ExtractResult{Title: title}, nil
	}

	contentHTML, err := region.Html()
	if err != nil {
		return nil, docqa.Errorf(docqa.EINTERNAL, "failed to render content: %v", err)
	}

	return &docqa.ExtractResult{
		Title:       title,
		ContentHTML: strings.TrimSpace(contentHTML),
		Text:        plainText(region),
	}, nil
}

// plainText renders region as one line per outermost block element,
// falling back to the region's whole text.
func plainText(region *goquery.Selection) string {
	var lines []string
	region.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		if sel.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if line := collapseSpace(sel.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		if text := collapseSpace(region.Text()); text != "" {
			return text
		}
		return ""
	}
	return strings.Join(lines, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
