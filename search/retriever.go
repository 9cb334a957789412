package search

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/fwojciec/docqa"
)

// DefaultTopK is the number of results returned when k is not positive.
const DefaultTopK = 5

// Keyword fallback limits.
const (
	maxKeywordPages   = 5
	fallbackParagraph = 2
	maxExcerptRunes   = 1000
)

// Retriever answers queries against a docqa.DocumentIndex.
// It holds no per-index state; published indexes are never mutated.
type Retriever struct {
	// Embedder embeds queries. A nil Embedder always uses keyword search.
	Embedder docqa.Embedder

	Logger *slog.Logger
}

// Search returns at most k passages for query, ordered by non-increasing
// similarity. Vector search is used when the index has vectors and the
// query embeds; otherwise pages are ranked by keyword hits.
func (r *Retriever) Search(ctx context.Context, idx *docqa.DocumentIndex, query string, k int) (*docqa.SearchResults, error) {
	if strings.TrimSpace(query) == "" {
		return nil, docqa.Errorf(docqa.EINVALID, "query required")
	}
	if idx == nil {
		return nil, docqa.Errorf(docqa.EINVALID, "index required")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	if r.Embedder != nil && idx.HasVectors() {
		qv, err := r.Embedder.Embed(ctx, query)
		if err == nil {
			return &docqa.SearchResults{Mode: docqa.SearchVector, Results: vectorSearch(idx, qv, k)}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger().Warn("query embedding failed, using keyword search", "doc_id", idx.DocID, "err", err)
	}

	return &docqa.SearchResults{Mode: docqa.SearchKeyword, Results: keywordSearch(idx, query, min(k, maxKeywordPages))}, nil
}

type scored struct {
	chunk *docqa.Chunk
	score float64
}

func vectorSearch(idx *docqa.DocumentIndex, qv []float32, k int) []docqa.SearchResult {
	candidates := make([]scored, 0, len(idx.Chunks))
	for _, c := range idx.Chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		candidates = append(candidates, scored{chunk: c, score: Cosine(qv, c.Embedding)})
	}
	// Stable, so equal scores keep chunk order.
	slices.SortStableFunc(candidates, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	results := make([]docqa.SearchResult, 0, min(k, len(candidates)))
	for _, c := range candidates[:min(k, len(candidates))] {
		results = append(results, docqa.SearchResult{
			Text:       c.chunk.Text,
			PageURL:    c.chunk.PageURL,
			Title:      pageTitle(idx, c.chunk.PageURL),
			Similarity: c.score,
		})
	}
	return results
}

type pageHit struct {
	url   string
	score float64
}

func keywordSearch(idx *docqa.DocumentIndex, query string, k int) []docqa.SearchResult {
	tokens := docqa.Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	var hits []pageHit
	for _, url := range idx.PageOrder {
		n := 0
		for _, t := range tokens {
			if _, ok := idx.Keywords[t][url]; ok {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, pageHit{url: url, score: float64(n) / float64(len(tokens))})
		}
	}
	slices.SortStableFunc(hits, func(a, b pageHit) int {
		return cmp.Compare(b.score, a.score)
	})

	results := make([]docqa.SearchResult, 0, min(k, len(hits)))
	for _, h := range hits[:min(k, len(hits))] {
		page := idx.Pages[h.url]
		results = append(results, docqa.SearchResult{
			Text:       Excerpt(page.Content, tokens),
			PageURL:    h.url,
			Title:      page.Title,
			Similarity: h.score,
		})
	}
	return results
}

// Excerpt returns the paragraphs of content that contain any of tokens,
// or the first two paragraphs if none do, truncated to 1000 runes.
func Excerpt(content string, tokens []string) string {
	var paragraphs, matched []string
	for _, line := range strings.Split(content, "\n") {
		p := strings.TrimSpace(line)
		if p == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
		lower := strings.ToLower(p)
		for _, t := range tokens {
			if strings.Contains(lower, t) {
				matched = append(matched, p)
				break
			}
		}
	}
	if len(matched) == 0 {
		matched = paragraphs[:min(fallbackParagraph, len(paragraphs))]
	}
	return truncateRunes(strings.Join(matched, "\n"), maxExcerptRunes)
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// has zero norm or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func pageTitle(idx *docqa.DocumentIndex, url string) string {
	if p, ok := idx.Pages[url]; ok && p.Title != "" {
		return p.Title
	}
	return url
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func (r *Retriever) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}
