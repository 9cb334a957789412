package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var (
	_ docqa.Completer    = (*Completer)(nil)
	_ docqa.TokenCounter = (*TokenCounter)(nil)
)

// Completer is a mock implementation of docqa.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, req docqa.CompletionRequest) (string, error)
}

func (c *Completer) Complete(ctx context.Context, req docqa.CompletionRequest) (string, error) {
	return c.CompleteFn(ctx, req)
}

// TokenCounter is a mock implementation of docqa.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
