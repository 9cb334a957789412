// Package localembed provides an offline embedding model based on feature
// hashing. Vectors are deterministic, so identical text always embeds
// identically and texts sharing words score as similar.
package localembed

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docqa"
)

// Feature weights. Word bigrams carry order information at a lower weight.
const (
	unigramWeight = 1.0
	bigramWeight  = 0.5
)

var _ docqa.EmbeddingModel = (*Model)(nil)

// Model hashes word unigrams and bigrams into docqa.EmbeddingDimension
// buckets with signed counts and L2-normalizes the result.
type Model struct{}

// NewModel returns a Model.
func NewModel() *Model {
	return &Model{}
}

// Load is a docqa.ModelLoader for Model.
func Load(context.Context) (docqa.EmbeddingModel, error) {
	return NewModel(), nil
}

// Embed returns one unit vector per text. Texts without words yield zero
// vectors.
func (m *Model) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = vector(text)
	}
	return out, nil
}

// Close is a no-op.
func (m *Model) Close() error {
	return nil
}

func vector(text string) []float32 {
	acc := make([]float64, docqa.EmbeddingDimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, w := range words {
		addFeature(acc, w, unigramWeight)
		if i > 0 {
			addFeature(acc, words[i-1]+" "+w, bigramWeight)
		}
	}

	var norm float64
	for _, x := range acc {
		norm += x * x
	}
	v := make([]float32, docqa.EmbeddingDimension)
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i, x := range acc {
		v[i] = float32(x / norm)
	}
	return v
}

// addFeature adds weight to the bucket of feature. The top hash bit picks
// the sign so collisions tend to cancel.
func addFeature(acc []float64, feature string, weight float64) {
	h := xxhash.Sum64String(feature)
	bucket := h % uint64(len(acc))
	if h>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}
