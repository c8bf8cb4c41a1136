package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/loan-offers/constants"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

// file is the on-disk catalog layout:
//
//	lenders:
//	  - HDFC Bank Personal Loan
//	  - match: home credit
//	    display: HOME CREDIT
type file struct {
	Lenders []entry `yaml:"lenders"`
}

type entry offers.CatalogEntry

// UnmarshalYAML accepts either a bare name or a {match, display} mapping.
func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Match = node.Value
		return nil
	}
	var m struct {
		Match   string `yaml:"match"`
		Display string `yaml:"display"`
	}
	if err := node.Decode(&m); err != nil {
		return err
	}
	e.Match, e.Display = m.Match, m.Display
	return nil
}

// Default returns the built-in lender catalog.
func Default() offers.Catalog {
	return offers.NewCatalog(constants.Lenders...)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (offers.Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", offers.ErrInvalidCatalog, err)
	}
	c := make(offers.Catalog, 0, len(f.Lenders))
	for _, e := range f.Lenders {
		c = append(c, offers.CatalogEntry{
			Match:   strings.TrimSpace(e.Match),
			Display: strings.TrimSpace(e.Display),
		})
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects blank and duplicate match names.
func Validate(c offers.Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}
	seen := make(map[string]int, len(c))
	for i, e := range c {
		key := strings.ToLower(e.Match)
		if j, dup := seen[key]; dup {
			return fmt.Errorf("%w: entry %d repeats entry %d (%q)", offers.ErrInvalidCatalog, i, j, e.Match)
		}
		seen[key] = i
	}
	return nil
}

// Load reads a catalog file. An empty path yields the built-in catalog.
func Load(path string, logger *slog.Logger) (offers.Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		c := Default()
		logger.Debug("catalog.default", "entries", len(c))
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		logger.Error("catalog.invalid", "path", path, "err", err)
		return nil, err
	}
	logger.Info("catalog.loaded", "path", path, "entries", len(c))
	return c, nil
}
