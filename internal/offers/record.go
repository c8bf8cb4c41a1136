// Package offers turns the flattened visible text of a loan marketing page into one
// structured record per lender named in a catalog.
//
// The package has no I/O and no clock. Rendering, persistence and export live in
// sibling packages that depend on it.
package offers

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCatalog is returned when a catalog entry has a blank match name.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrInvalidText is returned when the page text is not valid UTF-8.
	ErrInvalidText = errors.New("invalid page text")
)

// Record is the structured offer recovered for one lender anchor.
// Optional fields are nil when nothing plausible was found.
type Record struct {
	ProductName              string  `json:"productName"`
	InterestRate             *string `json:"interestRate"`
	MinimumIncomeRequired    *string `json:"minimumIncomeRequired"`
	MinimumCreditScoreNeeded *string `json:"minimumCreditScoreNeeded"`
	LoanAmount               *string `json:"loanAmount"`
	MinimumAge               string  `json:"minimumAge"`
	RawText                  string  `json:"rawText"`
}

// Collection is the document written for one extraction pass.
type Collection struct {
	URL         string    `json:"url"`
	ScrapedAt   time.Time `json:"scrapedAt"`
	LenderCount int       `json:"lenderCount"`
	Lenders     []Record  `json:"lenders"`
}

// NewCollection wraps records with their source. Lenders is never nil so the
// document always carries an array.
func NewCollection(url string, scrapedAt time.Time, records []Record) Collection {
	lenders := make([]Record, len(records))
	copy(lenders, records)
	return Collection{
		URL:         url,
		ScrapedAt:   scrapedAt.UTC(),
		LenderCount: len(lenders),
		Lenders:     lenders,
	}
}
