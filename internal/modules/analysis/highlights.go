package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const previewLen = 500

var numberedLine = regexp.MustCompile(`^\d+\.`)

// highlightMarkers are accepted line prefixes. "â€¢" is "•" decoded as
// Windows-1252, which some model outputs and older clients produce.
var highlightMarkers = []string{"•", "â€¢", "-"}

// ExtractHighlights returns the trimmed lines of summary that start with a
// bullet, a hyphen or a "N." prefix, in order. The result is never nil.
func ExtractHighlights(summary string) []string {
	out := []string{}
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isHighlight(line) {
			out = append(out, line)
		}
	}
	return out
}

func isHighlight(line string) bool {
	for _, m := range highlightMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return numberedLine.MatchString(line)
}

// Preview is the first 500 characters of text followed by "...". The
// ellipsis is added even when nothing was cut.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLen {
		return text + "..."
	}
	return string([]rune(text)[:previewLen]) + "..."
}
