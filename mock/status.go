package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.StatusService = (*StatusService)(nil)

// StatusService is a mock implementation of docqa.StatusService.
type StatusService struct {
	StartStatusFn  func(ctx context.Context, status *docqa.DocumentStatus) error
	FindStatusFn   func(ctx context.Context, docID string) (*docqa.DocumentStatus, error)
	UpdateStatusFn func(ctx context.Context, docID string, upd docqa.StatusUpdate) (*docqa.DocumentStatus, error)
}

func (s *StatusService) StartStatus(ctx context.Context, status *docqa.DocumentStatus) error {
	return s.StartStatusFn(ctx, status)
}

func (s *StatusService) FindStatus(ctx context.Context, docID string) (*docqa.DocumentStatus, error) {
	return s.FindStatusFn(ctx, docID)
}

func (s *StatusService) UpdateStatus(ctx context.Context, docID string, upd docqa.StatusUpdate) (*docqa.DocumentStatus, error) {
	return s.UpdateStatusFn(ctx, docID, upd)
}
