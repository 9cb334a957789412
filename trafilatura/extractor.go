// Package trafilatura implements docqa.Extractor with go-trafilatura's
// boilerplate detection.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docqa"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ docqa.Extractor = (*Extractor)(nil)

// Extractor extracts the main content of documentation pages with
// go-trafilatura. Comments sections are dropped.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor with fallback extraction enabled.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
}

// Extract processes raw HTML and returns the main content as HTML and
// plain text.
func (e *Extractor) Extract(rawHTML string) (*docqa.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINVALID, "extract content: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &docqa.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: contentHTML,
		Text:        strings.TrimSpace(result.ContentText),
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", docqa.Errorf(docqa.EINTERNAL, "render content: %v", err)
	}
	return buf.String(), nil
}
