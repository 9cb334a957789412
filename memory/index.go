package memory

import (
	"context"

	"github.com/fwojciec/docqa"
)

// PutIndex stores idx. Indexes are immutable once stored, so the pointer is
// shared with readers.
func (s *Store) PutIndex(_ context.Context, idx *docqa.DocumentIndex) error {
	if idx == nil || idx.DocID == "" {
		return docqa.Errorf(docqa.EINVALID, "index document ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[idx.DocID] = idx
	return nil
}

// FindIndex returns the index for docID.
func (s *Store) FindIndex(_ context.Context, docID string) (*docqa.DocumentIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[docID]
	if !ok {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "no index for document %s", docID)
	}
	return idx, nil
}

// DeleteIndex removes the index for docID.
func (s *Store) DeleteIndex(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indexes, docID)
	return nil
}
