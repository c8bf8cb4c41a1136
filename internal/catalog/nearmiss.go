package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

// DefaultSimilarity is the Jaro-Winkler score above which a line is reported.
const DefaultSimilarity = 0.9

// NearMiss is a line that looks like a lender name but matched no entry.
type NearMiss struct {
	Line       int
	Text       string
	Entry      offers.CatalogEntry
	Similarity float64
}

// NearMisses reports lines that did not match any entry but are close to one,
// e.g. a renamed product or an OCR-style typo in the page. Only lines of roughly
// the entry's length are compared.
func NearMisses(lines []string, c offers.Catalog, threshold float64) []NearMiss {
	if threshold <= 0 {
		threshold = DefaultSimilarity
	}
	var out []NearMiss
	for i, line := range lines {
		if _, ok := c.Find(line); ok {
			continue
		}
		lower := strings.ToLower(line)
		n := utf8.RuneCountInString(lower)
		var (
			best    offers.CatalogEntry
			bestSim float64
		)
		for _, e := range c {
			target := strings.ToLower(e.Match)
			m := utf8.RuneCountInString(target)
			if n*10 < m*7 || n*10 > m*13 {
				continue
			}
			if sim := matchr.JaroWinkler(lower, target, false); sim > bestSim {
				best, bestSim = e, sim
			}
		}
		if bestSim >= threshold {
			out = append(out, NearMiss{Line: i, Text: line, Entry: best, Similarity: bestSim})
		}
	}
	return out
}
