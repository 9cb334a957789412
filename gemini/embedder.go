package gemini

import (
	"context"

	"github.com/fwojciec/docqa"
	"google.golang.org/genai"
)

// DefaultEmbeddingModel is the Gemini model used for embeddings.
const DefaultEmbeddingModel = "gemini-embedding-001"

// retrievalTaskType tunes embeddings for document retrieval.
const retrievalTaskType = "RETRIEVAL_DOCUMENT"

var _ docqa.EmbeddingModel = (*Embedder)(nil)

// Embedder implements docqa.EmbeddingModel with the Gemini embedding API,
// truncated to docqa.EmbeddingDimension.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbeddingModel.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model}
}

// Loader returns a docqa.ModelLoader that builds an Embedder on client.
func Loader(client *genai.Client, model string) docqa.ModelLoader {
	return func(context.Context) (docqa.EmbeddingModel, error) {
		return NewEmbedder(client, model), nil
	}
}

// Embed returns one vector per text in a single batch request.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	dim := int32(docqa.EmbeddingDimension)
	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType:             retrievalTaskType,
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, docqa.Errorf(docqa.EINTERNAL, "gemini returned an unexpected number of embeddings")
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, docqa.Errorf(docqa.EINTERNAL, "gemini returned an empty embedding")
		}
		out[i] = emb.Values
	}
	return out, nil
}

// Close is a no-op; the client is owned by the caller.
func (e *Embedder) Close() error {
	return nil
}
