package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var _ docqa.DocService = (*DocService)(nil)

// DocService is a mock implementation of docqa.DocService.
type DocService struct {
	ProcessFn      func(ctx context.Context, req docqa.ProcessRequest) (*docqa.ProcessResult, error)
	ProcessAsyncFn func(ctx context.Context, req docqa.ProcessRequest) (string, error)
	StatusFn       func(ctx context.Context, url string) (*docqa.DocumentStatus, error)
	QueryFn        func(ctx context.Context, req docqa.QueryRequest) (*docqa.QueryResult, error)
	QueryAsyncFn   func(ctx context.Context, req docqa.QueryRequest) (string, error)
	CancelFn       func(ctx context.Context, url string) (bool, error)
}

func (s *DocService) Process(ctx context.Context, req docqa.ProcessRequest) (*docqa.ProcessResult, error) {
	return s.ProcessFn(ctx, req)
}

func (s *DocService) ProcessAsync(ctx context.Context, req docqa.ProcessRequest) (string, error) {
	return s.ProcessAsyncFn(ctx, req)
}

func (s *DocService) Status(ctx context.Context, url string) (*docqa.DocumentStatus, error) {
	return s.StatusFn(ctx, url)
}

func (s *DocService) Query(ctx context.Context, req docqa.QueryRequest) (*docqa.QueryResult, error) {
	return s.QueryFn(ctx, req)
}

func (s *DocService) QueryAsync(ctx context.Context, req docqa.QueryRequest) (string, error) {
	return s.QueryAsyncFn(ctx, req)
}

func (s *DocService) Cancel(ctx context.Context, url string) (bool, error) {
	return s.CancelFn(ctx, url)
}
