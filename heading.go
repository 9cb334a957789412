package docqa

import (
	"strings"
)

// Heading is an ATX heading found in page markdown.
type Heading struct {
	Level int
	Title string
}

// Headings scans markdown line by line and returns its ATX headings in
// order. Lines inside fenced code blocks (``` or ~~~) are ignored, as are
// headings with an empty title.
func Headings(markdown string) []Heading {
	var headings []Heading
	var fence string
	for line := range strings.Lines(markdown) {
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if f := fenceMarker(trimmed); f != "" {
			fence = f
			continue
		}
		if h, ok := parseHeading(trimmed); ok {
			headings = append(headings, h)
		}
	}
	return headings
}

func fenceMarker(line string) string {
	for _, f := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, f) {
			return f
		}
	}
	return ""
}

// parseHeading accepts "## Title" and "## Title ##" but not "##Title".
func parseHeading(line string) (Heading, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return Heading{}, false
	}
	rest := line[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return Heading{}, false
	}
	title := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#"))
	title = strings.Trim(title, "*_`")
	if title == "" {
		return Heading{}, false
	}
	return Heading{Level: level, Title: title}, true
}
