package offers

import (
	"strings"
	"unicode"
)

// DefaultWindowLines is how many lines, anchor included, form an offer's context.
const DefaultWindowLines = 25

// Anchor is a line that names a catalog lender.
type Anchor struct {
	Line  int
	Entry CatalogEntry
}

// SplitLines splits text on newlines, trims each line and drops empty ones.
func SplitLines(text string) []string {
	parts := strings.Split(text, "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimFunc(p, unicode.IsSpace); p != "" {
			lines = append(lines, p)
		}
	}
	return lines
}

// MatchAnchors reports every line that names a catalog lender, without skip-ahead.
func MatchAnchors(lines []string, catalog Catalog) []Anchor {
	m := newMatcher(catalog)
	var anchors []Anchor
	for i, l := range lines {
		if e, ok := m.find(l); ok {
			anchors = append(anchors, Anchor{Line: i, Entry: e})
		}
	}
	return anchors
}

// ContextWindow joins lines [start, start+size) with single spaces, clipped to
// the end of the slice.
func ContextWindow(lines []string, start, size int) string {
	if start < 0 || start >= len(lines) || size <= 0 {
		return ""
	}
	end := start + size
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], " ")
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
