package goquery_test

import (
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/fwojciec/docqa/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("implements docqa.Extractor", func(t *testing.T) {
		t.Parallel()

		var _ docqa.Extractor = goquery.NewExtractor()
	})

	t.Run("prefers main over article and body", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Guide</title></head><body>
<nav><a href="/">Home</a></nav>
<article><p>Article text</p></article>
<main><h1>Install</h1><p>Run the installer.</p></main>
<footer>Copyright</footer>
</body></html>`

		result, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Equal(t, "Guide", result.Title)
		assert.Contains(t, result.ContentHTML, "Run the installer.")
		assert.NotContains(t, result.ContentHTML, "Article text")
		assert.Equal(t, "Install\nRun the installer.", result.Text)
	})

	t.Run("falls back through article and role=main", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewExtractor().Extract(`<html><body><div role="main"><p>Role content</p></div><div>Other</div></body></html>`)
		require.NoError(t, err)
		assert.Equal(t, `<p>Role content</p>`, result.ContentHTML)

		result, err = goquery.NewExtractor().Extract(`<html><body><div role="main">Role</div><article><p>Article</p></article></body></html>`)
		require.NoError(t, err)
		assert.Equal(t, `<p>Article</p>`, result.ContentHTML)
	})

	t.Run("uses body when no content region exists", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><script>var x = 1;</script><div>Just a body</div><footer>Footer</footer></body></html>`

		result, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Equal(t, `<div>Just a body</div>`, result.ContentHTML)
		assert.Equal(t, "Just a body", result.Text)
	})

	t.Run("takes title from first h1 when title tag is missing", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewExtractor().Extract(`<html><body><main><h1>  Getting
 Started </h1><h1>Second</h1></main></body></html>`)

		require.NoError(t, err)
		assert.Equal(t, "Getting Started", result.Title)
	})

	t.Run("renders nested blocks once", func(t *testing.T) {
		t.Parallel()

		result, err := goquery.NewExtractor().Extract(`<main><ul><li><p>One</p></li><li>Two</li></ul></main>`)

		require.NoError(t, err)
		assert.Equal(t, "One\nTwo", result.Text)
	})
}
