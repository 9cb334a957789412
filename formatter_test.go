package docqa_test

import (
	"testing"

	"github.com/fwojciec/docqa"
	"github.com/stretchr/testify/assert"
)

func TestFormatContext(t *testing.T) {
	t.Parallel()

	t.Run("formats single passage with title", func(t *testing.T) {
		t.Parallel()

		results := []docqa.SearchResult{
			{Title: "Getting Started", Text: "Welcome to the docs."},
		}

		assert.Equal(t, "## Source: Getting Started\nWelcome to the docs.", docqa.FormatContext(results))
	})

	t.Run("uses page URL when title is empty", func(t *testing.T) {
		t.Parallel()

		results := []docqa.SearchResult{
			{PageURL: "example.com/docs", Text: "Some content."},
		}

		assert.Equal(t, "## Source: example.com/docs\nSome content.", docqa.FormatContext(results))
	})

	t.Run("separates passages with a blank line", func(t *testing.T) {
		t.Parallel()

		results := []docqa.SearchResult{
			{Title: "One", Text: "First content."},
			{Title: "Two", Text: "Second content."},
		}

		expected := "## Source: One\nFirst content.\n\n## Source: Two\nSecond content."
		assert.Equal(t, expected, docqa.FormatContext(results))
	})

	t.Run("returns empty string for nil slice", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, docqa.FormatContext(nil))
	})
}

func TestSources(t *testing.T) {
	t.Parallel()

	results := []docqa.SearchResult{
		{PageURL: "example.com/b"},
		{PageURL: "example.com/a"},
		{PageURL: "example.com/b"},
	}

	assert.Equal(t, []string{"example.com/b", "example.com/a"}, docqa.Sources(results))
}
