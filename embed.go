package docqa

import "context"

// EmbeddingDimension is the length of every embedding vector.
const EmbeddingDimension = 384

// EmbeddingModel computes embeddings for batches of text.
// Implementations need not be safe for concurrent use.
type EmbeddingModel interface {
	// Embed returns one vector per input, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases the model.
	Close() error
}

// ModelLoader constructs an EmbeddingModel.
type ModelLoader func(ctx context.Context) (EmbeddingModel, error)

// Embedder converts text to fixed-dimension vectors.
type Embedder interface {
	// Embed returns the vector for text. Blank text yields ZeroVector.
	// Model failures return EINDEX.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order.
	// Blank inputs yield ZeroVector. Model failures return EINDEX.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ZeroVector returns an all-zero vector of EmbeddingDimension.
func ZeroVector() []float32 {
	return make([]float32, EmbeddingDimension)
}
