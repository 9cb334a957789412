// Package search builds document indexes and retrieves passages from them
// by cosine similarity, falling back to keyword matching.
package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docqa"
	"github.com/google/uuid"
)

// Indexer turns crawled pages into a docqa.DocumentIndex.
type Indexer struct {
	// Embedder computes chunk vectors. A nil Embedder builds a keyword-only index.
	Embedder docqa.Embedder

	// ChunkLength bounds chunk size in runes. Defaults to docqa.DefaultChunkLength.
	ChunkLength int

	Logger *slog.Logger

	// Now returns the build timestamp. Defaults to time.Now.
	Now func() time.Time
}

// Build chunks and embeds pages in order and fills the keyword index.
// A page whose chunks cannot be embedded keeps them without vectors.
// Only context errors abort the build.
func (ix *Indexer) Build(ctx context.Context, docID, url string, pages []*docqa.Page) (*docqa.DocumentIndex, error) {
	if docID == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "document ID required")
	}

	maxLength := ix.ChunkLength
	if maxLength <= 0 {
		maxLength = docqa.DefaultChunkLength
	}
	log := ix.logger().With("doc_id", docID)

	idx := &docqa.DocumentIndex{
		DocID:    docID,
		URL:      url,
		Pages:    make(map[string]*docqa.Page, len(pages)),
		Keywords: make(map[string]map[string]struct{}),
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := idx.Pages[page.URL]; ok {
			continue
		}
		idx.Pages[page.URL] = page
		idx.PageOrder = append(idx.PageOrder, page.URL)

		idx.AddPageKeywords(page)

		texts := docqa.ChunkText(page.Content, maxLength)
		if len(texts) == 0 {
			continue
		}

		vecs, err := ix.embed(ctx, texts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Warn("indexing page without vectors", "url", page.URL, "chunks", len(texts), "err", err)
			vecs = nil
		}

		for i, text := range texts {
			chunk := &docqa.Chunk{
				ID:      uuid.NewString(),
				DocID:   docID,
				PageURL: page.URL,
				Index:   len(idx.Chunks),
				Text:    text,
			}
			if vecs != nil {
				chunk.Embedding = vecs[i]
			}
			idx.Chunks = append(idx.Chunks, chunk)
		}
	}

	idx.BuiltAt = ix.now()
	log.Info("index built", "pages", len(idx.PageOrder), "chunks", len(idx.Chunks), "keywords", len(idx.Keywords), "vectors", idx.HasVectors())
	return idx, nil
}

func (ix *Indexer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if ix.Embedder == nil {
		return nil, nil
	}
	vecs, err := ix.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, docqa.Errorf(docqa.EINDEX, "got %d vectors for %d chunks", len(vecs), len(texts))
	}
	return vecs, nil
}

func (ix *Indexer) now() time.Time {
	if ix.Now != nil {
		return ix.Now().UTC()
	}
	return time.Now().UTC()
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger != nil {
		return ix.Logger
	}
	return slog.New(slog.DiscardHandler)
}
