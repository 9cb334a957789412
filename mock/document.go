package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of docqa.DocumentStore.
type DocumentStore struct {
	SaveDocumentFn     func(ctx context.Context, doc *docqa.Document, idx *docqa.DocumentIndex) error
	FindDocumentByIDFn func(ctx context.Context, id string) (*docqa.Document, error)
	FindIndexFn        func(ctx context.Context, id string) (*docqa.DocumentIndex, error)
	DeleteDocumentFn   func(ctx context.Context, id string) error
}

func (s *DocumentStore) SaveDocument(ctx context.Context, doc *docqa.Document, idx *docqa.DocumentIndex) error {
	return s.SaveDocumentFn(ctx, doc, idx)
}

func (s *DocumentStore) FindDocumentByID(ctx context.Context, id string) (*docqa.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentStore) FindIndex(ctx context.Context, id string) (*docqa.DocumentIndex, error) {
	return s.FindIndexFn(ctx, id)
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, id string) error {
	return s.DeleteDocumentFn(ctx, id)
}
