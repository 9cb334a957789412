package localembed_test

import (
	"context"
	"math"
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/localembed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestModel_Embed(t *testing.T) {
	t.Parallel()

	t.Run("returns unit vectors of the embedding dimension", func(t *testing.T) {
		t.Parallel()

		vecs, err := localembed.NewModel().Embed(context.Background(), []string{"Install the package", "Configure logging"})

		require.NoError(t, err)
		require.Len(t, vecs, 2)
		for _, v := range vecs {
			assert.Len(t, v, docqa.EmbeddingDimension)
			assert.InDelta(t, 1.0, cosine(v, v), 1e-6)
		}
	})

	t.Run("is deterministic and case insensitive", func(t *testing.T) {
		t.Parallel()

		m := localembed.NewModel()
		a, err := m.Embed(context.Background(), []string{"Routing Requests"})
		require.NoError(t, err)
		b, err := m.Embed(context.Background(), []string{"routing, requests!"})
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("scores shared vocabulary above unrelated text", func(t *testing.T) {
		t.Parallel()

		vecs, err := localembed.NewModel().Embed(context.Background(), []string{
			"how to configure the http router middleware",
			"the router accepts middleware to configure http handling",
			"bake the bread for forty minutes",
		})
		require.NoError(t, err)

		assert.Greater(t, cosine(vecs[0], vecs[1]), cosine(vecs[0], vecs[2]))
	})

	t.Run("returns zero vector for text without words", func(t *testing.T) {
		t.Parallel()

		vecs, err := localembed.NewModel().Embed(context.Background(), []string{"  ... !!"})

		require.NoError(t, err)
		assert.Equal(t, docqa.ZeroVector(), vecs[0])
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := localembed.NewModel().Embed(ctx, []string{"text"})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	var loader docqa.ModelLoader = localembed.Load
	m, err := loader(context.Background())

	require.NoError(t, err)
	assert.NoError(t, m.Close())
}
