// Package readability implements docqa.Extractor with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/docqa"
	"github.com/go-shiori/go-readability"
)

var _ docqa.Extractor = (*Extractor)(nil)

// Extractor extracts article content with Mozilla's Readability algorithm.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the readable content as HTML and
// plain text.
func (e *Extractor) Extract(rawHTML string) (*docqa.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "extract content: %v", err)
	}

	return &docqa.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: strings.TrimSpace(article.Content),
		Text:        strings.TrimSpace(article.TextContent),
	}, nil
}
