package mock

import (
	"context"

	"github.com/fwojciec/docqa"
)

var (
	_ docqa.EmbeddingModel = (*EmbeddingModel)(nil)
	_ docqa.Embedder       = (*Embedder)(nil)
)

// EmbeddingModel is a mock implementation of docqa.EmbeddingModel.
type EmbeddingModel struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
	CloseFn func() error
}

func (m *EmbeddingModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return m.EmbedFn(ctx, texts)
}

func (m *EmbeddingModel) Close() error {
	if m.CloseFn == nil {
		return nil
	}
	return m.CloseFn()
}

// Embedder is a mock implementation of docqa.Embedder.
type Embedder struct {
	EmbedFn      func(ctx context.Context, text string) ([]float32, error)
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedBatchFn(ctx, texts)
}
