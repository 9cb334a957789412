package memory

import (
	"context"

	"github.com/fwojciec/docqa"
)

// StartStatus records a fresh in_progress status for a new run.
func (s *Store) StartStatus(_ context.Context, status *docqa.DocumentStatus) error {
	if status.DocID == "" {
		return docqa.Errorf(docqa.EINVALID, "document ID required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.statuses[status.DocID]; ok && cur.State == docqa.DocumentInProgress {
		return docqa.Errorf(docqa.ECONFLICT, "document %s is already being processed", status.DocID)
	}
	st := *status
	st.State = docqa.DocumentInProgress
	st.UpdatedAt = s.now()
	s.statuses[st.DocID] = &st
	return nil
}

// FindStatus returns a snapshot of the document's status.
func (s *Store) FindStatus(_ context.Context, docID string) (*docqa.DocumentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.statuses[docID]
	if !ok {
		return &docqa.DocumentStatus{DocID: docID, State: docqa.DocumentNotFound}, nil
	}
	st := *cur
	return &st, nil
}

// UpdateStatus applies upd to a non-terminal status.
func (s *Store) UpdateStatus(_ context.Context, docID string, upd docqa.StatusUpdate) (*docqa.DocumentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.statuses[docID]
	if !ok {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "no status for document %s", docID)
	}
	if cur.State.Terminal() {
		return nil, docqa.Errorf(docqa.ECONFLICT, "document %s is already %s", docID, cur.State)
	}
	if upd.State != nil && *upd.State == docqa.DocumentNotFound {
		return nil, docqa.Errorf(docqa.EINVALID, "invalid status transition to %s", *upd.State)
	}

	if upd.State != nil {
		cur.State = *upd.State
	}
	if upd.SectionsAnalyzed != nil {
		cur.SectionsAnalyzed = *upd.SectionsAnalyzed
	}
	if upd.TotalPages != nil {
		cur.TotalPages = *upd.TotalPages
	}
	if upd.CompletionPercentage != nil {
		cur.CompletionPercentage = *upd.CompletionPercentage
	}
	if upd.Message != nil {
		cur.Message = *upd.Message
	}
	if upd.JobID != nil {
		cur.JobID = *upd.JobID
	}
	cur.UpdatedAt = s.now()

	st := *cur
	return &st, nil
}
