// Package embed provides the process-wide embedding engine. It loads the
// embedding model lazily and serializes every model call.
package embed

import (
	"context"
	"strings"

	"github.com/fwojciec/docqa"
	"golang.org/x/sync/semaphore"
)

// DefaultBatchSize is the number of texts sent to the model per call.
const DefaultBatchSize = 32

var _ docqa.Embedder = (*Engine)(nil)

// Engine implements docqa.Embedder on top of a lazily loaded model.
// It is safe for concurrent use; model calls run one at a time.
type Engine struct {
	loader docqa.ModelLoader

	// BatchSize bounds texts per model call. Defaults to DefaultBatchSize.
	BatchSize int

	// sem guards model and serializes model calls.
	sem   *semaphore.Weighted
	model docqa.EmbeddingModel
}

// NewEngine returns an Engine that loads its model with loader on first use.
func NewEngine(loader docqa.ModelLoader) *Engine {
	return &Engine{
		loader: loader,
		sem:    semaphore.NewWeighted(1),
	}
}

// Load loads the model if it is not loaded yet.
func (e *Engine) Load(ctx context.Context) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)
	return e.loadLocked(ctx)
}

// Unload closes and drops the model. The next call loads it again.
func (e *Engine) Unload(ctx context.Context) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer e.sem.Release(1)

	if e.model == nil {
		return nil
	}
	err := e.model.Close()
	e.model = nil
	return err
}

// Embed returns the vector for text. Blank text yields a zero vector
// without a model call.
func (e *Engine) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per text, in input order. Blank texts yield
// zero vectors; the rest go to the model in batches of BatchSize.
func (e *Engine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var pending []int
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = docqa.ZeroVector()
			continue
		}
		pending = append(pending, i)
	}

	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	for start := 0; start < len(pending); start += size {
		idx := pending[start:min(start+size, len(pending))]
		batch := make([]string, len(idx))
		for j, i := range idx {
			batch[j] = texts[i]
		}

		vecs, err := e.embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		for j, i := range idx {
			out[i] = vecs[j]
		}
	}

	return out, nil
}

// embed runs one model call while holding the semaphore.
func (e *Engine) embed(ctx context.Context, batch []string) ([][]float32, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	if err := e.loadLocked(ctx); err != nil {
		return nil, err
	}

	vecs, err := e.model.Embed(ctx, batch)
	if err != nil {
		return nil, docqa.Errorf(docqa.EINDEX, "embedding failed: %v", err)
	}
	if len(vecs) != len(batch) {
		return nil, docqa.Errorf(docqa.EINDEX, "model returned %d vectors for %d texts", len(vecs), len(batch))
	}
	for _, v := range vecs {
		if len(v) != docqa.EmbeddingDimension {
			return nil, docqa.Errorf(docqa.EINDEX, "model returned %d-dimensional vector, want %d", len(v), docqa.EmbeddingDimension)
		}
	}
	return vecs, nil
}

func (e *Engine) loadLocked(ctx context.Context) error {
	if e.model != nil {
		return nil
	}
	if e.loader == nil {
		return docqa.Errorf(docqa.EINDEX, "no embedding model configured")
	}
	model, err := e.loader(ctx)
	if err != nil {
		return docqa.Errorf(docqa.EINDEX, "load embedding model: %v", err)
	}
	e.model = model
	return nil
}
