package docqa

import (
	"context"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MinKeywordLength is the exclusive lower bound on indexed keyword length.
const MinKeywordLength = 3

// DocumentIndex is the searchable form of one processed document.
// It is built once and never modified after being stored.
type DocumentIndex struct {
	DocID string `json:"docId"`
	URL   string `json:"url"`

	// Pages maps normalized page URLs to pages; PageOrder lists them in crawl order.
	Pages     map[string]*Page `json:"pages"`
	PageOrder []string         `json:"pageOrder"`

	// Keywords maps each token to the set of page URLs containing it.
	Keywords map[string]map[string]struct{} `json:"-"`

	// Chunks are ordered by Chunk.Index.
	Chunks  []*Chunk  `json:"chunks"`
	BuiltAt time.Time `json:"builtAt"`
}

// HasVectors reports whether any chunk carries an embedding.
func (idx *DocumentIndex) HasVectors() bool {
	for _, c := range idx.Chunks {
		if len(c.Embedding) > 0 {
			return true
		}
	}
	return false
}

// AddPageKeywords records the tokens of page's title and content in the
// keyword index.
func (idx *DocumentIndex) AddPageKeywords(page *Page) {
	if idx.Keywords == nil {
		idx.Keywords = make(map[string]map[string]struct{})
	}
	for _, token := range Tokenize(page.Title + "\n" + page.Content) {
		set, ok := idx.Keywords[token]
		if !ok {
			set = make(map[string]struct{})
			idx.Keywords[token] = set
		}
		set[page.URL] = struct{}{}
	}
}

// IndexStore holds built document indexes.
type IndexStore interface {
	// PutIndex stores idx, replacing any index for the same document.
	PutIndex(ctx context.Context, idx *DocumentIndex) error

	// FindIndex returns ENOTFOUND if no index exists for docID.
	FindIndex(ctx context.Context, docID string) (*DocumentIndex, error)

	// DeleteIndex removes the index for docID, if any.
	DeleteIndex(ctx context.Context, docID string) error
}

// SearchMode identifies the retrieval path that produced results.
type SearchMode string

// SearchMode values.
const (
	SearchVector  SearchMode = "vector"
	SearchKeyword SearchMode = "keyword"
)

// SearchResult is one retrieved passage.
type SearchResult struct {
	Text       string  `json:"text"`
	PageURL    string  `json:"pageUrl"`
	Title      string  `json:"title"`
	Similarity float64 `json:"similarity"`
}

// SearchResults holds ranked results and the path that produced them.
type SearchResults struct {
	Mode    SearchMode     `json:"mode"`
	Results []SearchResult `json:"results"`
}

// Confidence scores how well results answer a query: the mean similarity
// scaled by 0.9. Keyword results without any match score 0.5.
func Confidence(r *SearchResults) float64 {
	if r == nil {
		return 0
	}
	if len(r.Results) == 0 {
		if r.Mode == SearchKeyword {
			return 0.5
		}
		return 0
	}
	var sum float64
	for _, res := range r.Results {
		sum += res.Similarity
	}
	return sum / float64(len(r.Results)) * 0.9
}

// Tokenize returns the distinct lowercase words of text longer than
// MinKeywordLength runes, in order of first occurrence.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(words))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) <= MinKeywordLength {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return tokens
}
