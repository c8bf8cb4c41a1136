package offers

import (
	"fmt"
	"strings"
)

// CatalogEntry names one lender. Match is the case-insensitive substring looked
// for in each line; Display is the product name emitted on records.
type CatalogEntry struct {
	Match   string `yaml:"match" json:"match"`
	Display string `yaml:"display,omitempty" json:"display,omitempty"`
}

// Name returns the product name used on records.
func (e CatalogEntry) Name() string {
	if e.Display != "" {
		return e.Display
	}
	return e.Match
}

// Catalog is ordered: when a line contains several match names the earliest
// entry wins.
type Catalog []CatalogEntry

// NewCatalog builds a catalog whose match and display names are the same.
func NewCatalog(names ...string) Catalog {
	c := make(Catalog, 0, len(names))
	for _, n := range names {
		c = append(c, CatalogEntry{Match: n})
	}
	return c
}

// Validate rejects entries whose match name is blank.
func (c Catalog) Validate() error {
	for i, e := range c {
		if strings.TrimSpace(e.Match) == "" {
			return fmt.Errorf("%w: entry %d has a blank match name", ErrInvalidCatalog, i)
		}
	}
	return nil
}

// Names returns the product names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, 0, len(c))
	for _, e := range c {
		out = append(out, e.Name())
	}
	return out
}

// Find returns the first entry whose match name occurs in line, ignoring case.
func (c Catalog) Find(line string) (CatalogEntry, bool) {
	lower := strings.ToLower(line)
	for _, e := range c {
		if strings.Contains(lower, strings.ToLower(e.Match)) {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// matcher is a Catalog with its match names lower-cased once.
type matcher struct {
	entries []CatalogEntry
	lowered []string
}

func newMatcher(c Catalog) matcher {
	m := matcher{entries: make([]CatalogEntry, len(c)), lowered: make([]string, len(c))}
	copy(m.entries, c)
	for i, e := range c {
		m.lowered[i] = strings.ToLower(e.Match)
	}
	return m
}

func (m matcher) find(line string) (CatalogEntry, bool) {
	lower := strings.ToLower(line)
	for i, needle := range m.lowered {
		if strings.Contains(lower, needle) {
			return m.entries[i], true
		}
	}
	return CatalogEntry{}, false
}
