package docqa

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkLength is the default maximum chunk length in runes.
const DefaultChunkLength = 512

// Chunk is a bounded-length segment of a page, the unit of embedding and retrieval.
type Chunk struct {
	ID      string `json:"id"`
	DocID   string `json:"docId"`
	PageURL string `json:"pageUrl"`

	// Index is the position of the chunk within its document index.
	Index     int       `json:"index"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
}

var sentenceEndRe = regexp.MustCompile(`[.!?]\s+`)

// ChunkText splits text into segments of at most maxLength runes.
//
// Text is split into paragraphs on line breaks. Paragraphs longer than
// maxLength are split further at sentence boundaries. Units are packed
// greedily, joined by a single space, and a segment is emitted whenever the
// next unit would not fit. A single sentence longer than maxLength is
// emitted whole.
func ChunkText(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultChunkLength
	}

	var units []string
	for _, line := range strings.Split(text, "\n") {
		p := strings.TrimSpace(line)
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) > maxLength {
			units = append(units, splitSentences(p)...)
			continue
		}
		units = append(units, p)
	}

	var chunks []string
	var buf strings.Builder
	size := 0
	for _, u := range units {
		n := utf8.RuneCountInString(u)
		if size > 0 && size+1+n > maxLength {
			chunks = append(chunks, buf.String())
			buf.Reset()
			size = 0
		}
		if size > 0 {
			buf.WriteByte(' ')
			size++
		}
		buf.WriteString(u)
		size += n
	}
	if size > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

// splitSentences cuts p after each terminal punctuation mark that is
// followed by whitespace.
func splitSentences(p string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(p, -1) {
		if s := strings.TrimSpace(p[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(p[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
