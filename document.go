package docqa

import (
	"context"
	"time"
)

// Document is the processed record of one documentation site.
type Document struct {
	ID           string         `json:"id"`
	URL          string         `json:"url"`
	Title        string         `json:"title"`
	Summary      string         `json:"summary"`
	KeyConcepts  []string       `json:"keyConcepts"`
	LanguageCode string         `json:"languageCode"`
	Status       DocumentStatus `json:"status"`
	ProcessedAt  time.Time      `json:"processedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.ID == "" {
		return Errorf(EINVALID, "document ID required")
	}
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	return nil
}

// DocumentStore persists processed documents with their pages and chunks.
// It is optional: the pipeline works entirely in memory without one.
type DocumentStore interface {
	// SaveDocument replaces any stored record of doc and its index.
	SaveDocument(ctx context.Context, doc *Document, idx *DocumentIndex) error

	// FindDocumentByID returns ENOTFOUND if the document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindIndex rebuilds the stored index of a document.
	// Returns ENOTFOUND if the document does not exist.
	FindIndex(ctx context.Context, id string) (*DocumentIndex, error)

	// DeleteDocument removes a document with its pages and chunks.
	// Returns ENOTFOUND if the document does not exist.
	DeleteDocument(ctx context.Context, id string) error
}
