package docqa

import (
	"regexp"
	"strings"
)

// MaxKeyConcepts bounds the key concepts derived from section headings.
const MaxKeyConcepts = 10

var listMarkerRe = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// ParseAnalysis splits a model's analysis of a site into a summary and key
// concepts. The summary is the first blank-line separated section. Key
// concepts are the list items of the first section mentioning "key
// concepts" (or "conceptos clave").
func ParseAnalysis(text string) (summary string, keyConcepts []string) {
	sections := strings.Split(strings.TrimSpace(text), "\n\n")
	summary = strings.TrimSpace(sections[0])

	for _, section := range sections {
		lower := strings.ToLower(section)
		if !strings.Contains(lower, "key concepts") && !strings.Contains(lower, "conceptos clave") {
			continue
		}
		for _, line := range strings.Split(section, "\n") {
			l := strings.ToLower(line)
			if strings.Contains(l, "key concepts") || strings.Contains(l, "conceptos clave") {
				continue
			}
			item := strings.TrimSpace(listMarkerRe.ReplaceAllString(strings.TrimSpace(line), ""))
			item = strings.Trim(item, "*")
			if item != "" {
				keyConcepts = append(keyConcepts, item)
			}
		}
		break
	}
	return summary, keyConcepts
}

// FallbackSummary builds a summary from the first five non-empty lines of
// content, for use when no model is available.
func FallbackSummary(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 5 {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// FallbackKeyConcepts returns the distinct top-level section headings of
// the pages, in page order, as key concepts.
func FallbackKeyConcepts(pages []*Page) []string {
	seen := make(map[string]struct{})
	var concepts []string
	for _, p := range pages {
		for _, h := range Headings(p.Content) {
			if h.Level > 2 {
				continue
			}
			key := strings.ToLower(h.Title)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			concepts = append(concepts, h.Title)
			if len(concepts) == MaxKeyConcepts {
				return concepts
			}
		}
	}
	return concepts
}
