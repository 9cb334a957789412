package search_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/mock"
	"github.com/fwojciec/docqa/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisEmbedder maps texts containing a key word to a unit vector along the
// word's axis. Texts with no known word map to the last axis.
func axisEmbedder(words ...string) *mock.Embedder {
	vec := func(text string) []float32 {
		v := make([]float32, docqa.EmbeddingDimension)
		lower := strings.ToLower(text)
		for i, w := range words {
			if strings.Contains(lower, w) {
				v[i] = 1
				return v
			}
		}
		v[docqa.EmbeddingDimension-1] = 1
		return v
	}
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, text string) ([]float32, error) {
			return vec(text), nil
		},
		EmbedBatchFn: func(_ context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, t := range texts {
				out[i] = vec(t)
			}
			return out, nil
		},
	}
}

func testPages() []*docqa.Page {
	return []*docqa.Page{
		{URL: "example.com/docs", Title: "Overview", Content: "Welcome to the router docs.\nRouting maps paths to handlers."},
		{URL: "example.com/docs/middleware", Title: "Middleware", Content: "Middleware wraps handlers.\nLogging middleware records requests."},
	}
}

func TestIndexer_Build(t *testing.T) {
	t.Parallel()

	t.Run("chunks and embeds pages in crawl order", func(t *testing.T) {
		t.Parallel()

		builtAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		ix := &search.Indexer{
			Embedder:    axisEmbedder("router", "middleware"),
			ChunkLength: 40,
			Now:         func() time.Time { return builtAt },
		}

		idx, err := ix.Build(context.Background(), "doc1", "https://example.com/docs", testPages())

		require.NoError(t, err)
		assert.Equal(t, "doc1", idx.DocID)
		assert.Equal(t, []string{"example.com/docs", "example.com/docs/middleware"}, idx.PageOrder)
		assert.Equal(t, builtAt, idx.BuiltAt)
		require.Len(t, idx.Chunks, 4)
		ids := make(map[string]bool)
		for i, c := range idx.Chunks {
			assert.Equal(t, i, c.Index)
			assert.Equal(t, "doc1", c.DocID)
			assert.Len(t, c.Embedding, docqa.EmbeddingDimension)
			assert.NotEmpty(t, c.ID)
			ids[c.ID] = true
		}
		assert.Len(t, ids, 4, "chunk IDs should be unique")
		assert.Equal(t, "example.com/docs/middleware", idx.Chunks[2].PageURL)
		assert.True(t, idx.HasVectors())
	})

	t.Run("fills the keyword index from titles and content", func(t *testing.T) {
		t.Parallel()

		idx, err := (&search.Indexer{}).Build(context.Background(), "doc1", "", testPages())

		require.NoError(t, err)
		assert.Contains(t, idx.Keywords["middleware"], "example.com/docs/middleware")
		assert.Contains(t, idx.Keywords["overview"], "example.com/docs")
		assert.Contains(t, idx.Keywords["handlers"], "example.com/docs")
		assert.Contains(t, idx.Keywords["handlers"], "example.com/docs/middleware")
		assert.NotContains(t, idx.Keywords, "the", "short tokens are not indexed")
		assert.False(t, idx.HasVectors())
	})

	t.Run("keeps chunks without vectors when embedding fails", func(t *testing.T) {
		t.Parallel()

		calls := 0
		ix := &search.Indexer{
			Embedder: &mock.Embedder{
				EmbedBatchFn: func(_ context.Context, texts []string) ([][]float32, error) {
					calls++
					if calls == 1 {
						return nil, docqa.Errorf(docqa.EINDEX, "model crashed")
					}
					return axisEmbedder("router").EmbedBatchFn(context.Background(), texts)
				},
			},
		}

		idx, err := ix.Build(context.Background(), "doc1", "", testPages())

		require.NoError(t, err)
		require.NotEmpty(t, idx.Chunks)
		assert.Nil(t, idx.Chunks[0].Embedding)
		assert.NotNil(t, idx.Chunks[len(idx.Chunks)-1].Embedding)
	})

	t.Run("skips duplicate pages", func(t *testing.T) {
		t.Parallel()

		pages := append(testPages(), testPages()[0])

		idx, err := (&search.Indexer{}).Build(context.Background(), "doc1", "", pages)

		require.NoError(t, err)
		assert.Len(t, idx.PageOrder, 2)
	})

	t.Run("returns context error when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := (&search.Indexer{}).Build(ctx, "doc1", "", testPages())

		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("requires a document ID", func(t *testing.T) {
		t.Parallel()

		_, err := (&search.Indexer{}).Build(context.Background(), "", "", nil)

		assert.Equal(t, docqa.EINVALID, docqa.ErrorCode(err))
	})
}
