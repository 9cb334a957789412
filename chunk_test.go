package docqa_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/docqa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText(t *testing.T) {
	t.Parallel()

	t.Run("returns nothing for blank text", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, docqa.ChunkText("", 100))
		assert.Empty(t, docqa.ChunkText("\n  \n\t\n", 100))
	})

	t.Run("packs short paragraphs into one chunk", func(t *testing.T) {
		t.Parallel()

		chunks := docqa.ChunkText("First paragraph.\n\nSecond paragraph.", 100)

		assert.Equal(t, []string{"First paragraph. Second paragraph."}, chunks)
	})

	t.Run("flushes when the next paragraph would not fit", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("a", 30) + "\n" + strings.Repeat("b", 30) + "\n" + strings.Repeat("c", 30)

		chunks := docqa.ChunkText(text, 61)

		require.Len(t, chunks, 2)
		assert.Equal(t, strings.Repeat("a", 30)+" "+strings.Repeat("b", 30), chunks[0])
		assert.Equal(t, strings.Repeat("c", 30), chunks[1])
	})

	t.Run("splits long paragraphs at sentence boundaries", func(t *testing.T) {
		t.Parallel()

		text := "One two three. Four five six! Seven eight nine? Ten eleven."

		chunks := docqa.ChunkText(text, 30)

		assert.Equal(t, []string{
			"One two three. Four five six!",
			"Seven eight nine? Ten eleven.",
		}, chunks)
	})

	t.Run("passes an oversized sentence through unsplit", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("word ", 20) + "end."
		text := "Short. " + long + " Tail."

		chunks := docqa.ChunkText(text, 20)

		assert.Contains(t, chunks, strings.TrimSpace(long))
	})

	t.Run("uses the default length for non-positive limits", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("x", docqa.DefaultChunkLength) + "\n" + "y"

		chunks := docqa.ChunkText(text, 0)

		require.Len(t, chunks, 2)
	})
}

func TestChunkText_Invariants(t *testing.T) {
	t.Parallel()

	text := `Installation

Install the package with the package manager. Then import it in your project! Does it work? It should.

Configuration is read from the environment. Every option has a sensible default and can be overridden with flags. The flags take precedence over the environment.
An extraordinarily-long-sentence-without-any-terminal-punctuation-or-spaces-that-cannot-be-split-any-further-by-the-chunker.
Short closing line.`

	for _, limit := range []int{20, 40, 80, 200} {
		chunks := docqa.ChunkText(text, limit)

		for _, c := range chunks {
			if utf8.RuneCountInString(c) > limit {
				assert.NotRegexp(t, `[.!?]\s`, c, "only a single sentence may exceed the limit %d", limit)
			}
		}
		assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(strings.Fields(strings.Join(chunks, " ")), " "))
	}
}
