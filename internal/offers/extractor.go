package offers

import (
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultSkipLines is how many lines after an anchor are not re-scanned.
	DefaultSkipLines = 10
	// NoSkip disables skip-ahead; every anchor line yields a record.
	NoSkip = -1
	// RawTextLimit is the number of characters of context kept on each record.
	RawTextLimit = 150
)

// Options tunes the extractor. Zero fields take the defaults.
type Options struct {
	WindowLines int
	SkipLines   int
}

func (o Options) withDefaults() Options {
	if o.WindowLines <= 0 {
		o.WindowLines = DefaultWindowLines
	}
	switch {
	case o.SkipLines == 0:
		o.SkipLines = DefaultSkipLines
	case o.SkipLines < 0:
		o.SkipLines = 0
	}
	return o
}

// Extractor recovers records from page text. It is immutable and safe for
// concurrent use.
type Extractor struct {
	matcher matcher
	opts    Options
}

// NewExtractor validates the catalog and returns an extractor over it.
func NewExtractor(catalog Catalog, opts Options) (*Extractor, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{matcher: newMatcher(catalog), opts: opts.withDefaults()}, nil
}

// Options returns the effective options.
func (e *Extractor) Options() Options { return e.opts }

// Extract returns one record per anchor, in page order. After an anchor the next
// SkipLines lines are not considered as anchors.
func (e *Extractor) Extract(text string) ([]Record, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrInvalidText)
	}
	lines := SplitLines(text)
	records := make([]Record, 0)
	for i := 0; i < len(lines); i++ {
		entry, ok := e.matcher.find(lines[i])
		if !ok {
			continue
		}
		rec := assemble(entry, ContextWindow(lines, i, e.opts.WindowLines))
		if rec.ProductName != "" {
			records = append(records, rec)
		}
		i += e.opts.SkipLines
	}
	return records, nil
}

// Extract runs a default extractor over text.
func Extract(text string, catalog Catalog) ([]Record, error) {
	e, err := NewExtractor(catalog, Options{})
	if err != nil {
		return nil, err
	}
	return e.Extract(text)
}

func assemble(entry CatalogEntry, context string) Record {
	rate := ExtractRate(context)
	return Record{
		ProductName:              entry.Name(),
		InterestRate:             rate,
		MinimumIncomeRequired:    ExtractIncome(context),
		MinimumCreditScoreNeeded: CreditScore(rate),
		LoanAmount:               ExtractAmount(context),
		MinimumAge:               ExtractAge(context),
		RawText:                  truncateRunes(context, RawTextLimit),
	}
}
